package models

import "time"

// CommunityMembershipRole defines a member's role in a community.
type CommunityMembershipRole string

const (
	// CommunityMembershipRoleModerator is the community moderator role.
	CommunityMembershipRoleModerator CommunityMembershipRole = "moderator"
	// CommunityMembershipRoleMember is the default member role.
	CommunityMembershipRoleMember CommunityMembershipRole = "member"
)

// CommunityMembership maps users to communities. It is the single source of
// truth for the membership relation; "communities of a user" and "members of
// a community" are both projections of this table.
type CommunityMembership struct {
	CommunityID uint                    `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community              `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint                    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        *User                   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        CommunityMembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}
