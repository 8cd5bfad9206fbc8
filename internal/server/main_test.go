package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"tapestry/internal/config"
	"tapestry/internal/models"
	"tapestry/internal/repository"
	"tapestry/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer builds a Server over a fresh in-memory sqlite database.
// Metrics and auth middleware are left out; tests inject the caller's
// identity with asUser.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
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

	userRepo := repository.NewUserRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	threadRepo := repository.NewThreadRepository(db)

	s := &Server{
		config:         &config.Config{Env: "test"},
		db:             db,
		userRepo:       userRepo,
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		threadRepo:     threadRepo,
	}
	s.userService = service.NewUserService(userRepo, threadRepo, membershipRepo)
	s.communityService = service.NewCommunityService(communityRepo, userRepo, membershipRepo, threadRepo, db)
	s.membershipService = service.NewMembershipService(communityRepo, userRepo, membershipRepo)
	s.threadService = service.NewThreadService(threadRepo, userRepo, communityRepo, db)

	return s, db
}

// asUser stubs the identity the auth middleware would have established.
func asUser(externalID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("externalUserID", externalID)
		return c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, externalID, name, username string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID: externalID,
		Name:       name,
		Username:   username,
		Onboarded:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		t.Fatalf("decode response %s: %v", body, err)
	}
}
