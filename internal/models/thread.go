package models

import "time"

// Thread represents a post in the Tapestry application. A thread with a
// ParentID is a reply; direct replies are reachable through Children. A
// thread belongs to at most one community.
type Thread struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	ParentID    *uint      `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Thread    `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children    []Thread   `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsReply reports whether the thread is a reply to another thread.
func (t *Thread) IsReply() bool {
	return t.ParentID != nil
}
