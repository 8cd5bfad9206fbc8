package models

import "time"

// Community represents a user-organized space that owns threads.
// CreatedByUserID is set at creation and never changes afterwards; the
// creator is not required to be a member for the community to exist.
type Community struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExternalID      string    `gorm:"size:64;not null;uniqueIndex" json:"external_id"`
	Name            string    `gorm:"size:120;not null" json:"name"`
	Username        string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Image           string    `json:"image"`
	Bio             string    `gorm:"type:text" json:"bio"`
	CreatedByUserID *uint     `json:"created_by_user_id"`
	CreatedByUser   *User     `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Threads         []Thread  `gorm:"foreignKey:CommunityID" json:"threads,omitempty"`
	// Members is resolved through community_memberships at read time.
	Members []User `gorm:"many2many:community_memberships;joinForeignKey:CommunityID;joinReferences:UserID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}
