package repository

import (
	"fmt"
	"testing"

	"tapestry/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.CommunityMembership{},
		&models.Thread{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, externalID, name, username string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID: externalID,
		Name:       name,
		Username:   username,
		Image:      fmt.Sprintf("https://img.example/%s.png", username),
		Bio:        "bio of " + name,
		Onboarded:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestCommunity(t *testing.T, db *gorm.DB, externalID, name, username string, creator *models.User) *models.Community {
	t.Helper()
	community := &models.Community{
		ExternalID: externalID,
		Name:       name,
		Username:   username,
		Image:      fmt.Sprintf("https://img.example/%s.png", username),
		Bio:        "about " + name,
	}
	if creator != nil {
		community.CreatedByUserID = &creator.ID
	}
	if err := db.Create(community).Error; err != nil {
		t.Fatalf("create community %s: %v", username, err)
	}
	return community
}

func createTestThread(t *testing.T, db *gorm.DB, author *models.User, community *models.Community, parent *models.Thread, content string) *models.Thread {
	t.Helper()
	thread := &models.Thread{
		Content:  content,
		AuthorID: author.ID,
	}
	if community != nil {
		thread.CommunityID = &community.ID
	}
	if parent != nil {
		thread.ParentID = &parent.ID
	}
	if err := db.Create(thread).Error; err != nil {
		t.Fatalf("create thread: %v", err)
	}
	return thread
}
