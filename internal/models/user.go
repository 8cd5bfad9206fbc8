// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the Tapestry application. Users are created on
// first authentication sync; the identity provider owns credentials and the
// external id, we only mirror profile data.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ExternalID string         `gorm:"size:64;not null;uniqueIndex" json:"external_id"`
	Name       string         `gorm:"size:120;not null" json:"name"`
	Username   string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Image      string         `json:"image"`
	Bio        string         `gorm:"type:text" json:"bio"`
	Onboarded  bool           `gorm:"not null;default:false" json:"onboarded"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Threads    []Thread       `gorm:"foreignKey:AuthorID" json:"threads,omitempty"`
}
