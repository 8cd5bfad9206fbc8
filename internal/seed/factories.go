// Package seed provides helpers to create development and demo data for
// the application database. These helpers are not intended for production.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"tapestry/internal/models"
	"tapestry/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// backdate spreads created_at over the last maxDays days so feeds look lived-in.
func (f *Factory) backdate(maxDays int) time.Time {
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample onboarded user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ExternalID: "user_" + uuid.NewString(),
		Name:       gofakeit.Name(),
		Username:   fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Bio:        gofakeit.Sentence(10),
		Onboarded:  true,
	}
	user.CreatedAt = f.backdate(120)

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateCommunity constructs and persists a community created by the given user.
func (f *Factory) CreateCommunity(creator *models.User, overrides ...func(*models.Community)) (*models.Community, error) {
	name := gofakeit.Company()
	community := &models.Community{
		ExternalID:      "org_" + uuid.NewString(),
		Name:            name,
		Username:        fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Image:           fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Bio:             gofakeit.Sentence(12),
		CreatedByUserID: &creator.ID,
	}
	community.CreatedAt = f.backdate(120)

	for _, override := range overrides {
		override(community)
	}

	if err := f.db.Create(community).Error; err != nil {
		return nil, fmt.Errorf("failed to create community: %w", err)
	}
	return community, nil
}

// AddMembership joins a user to a community. Duplicate pairs are ignored.
func (f *Factory) AddMembership(community *models.Community, user *models.User, role models.CommunityMembershipRole) error {
	membership := &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        role,
	}
	err := f.db.Create(membership).Error
	if err != nil && repository.IsUniqueConstraintError(err) {
		return nil
	}
	return err
}

// CreateThread constructs and persists a top-level thread by the given author,
// optionally posted to a community.
func (f *Factory) CreateThread(author *models.User, community *models.Community, overrides ...func(*models.Thread)) (*models.Thread, error) {
	thread := &models.Thread{
		Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
		AuthorID: author.ID,
	}
	if community != nil {
		thread.CommunityID = &community.ID
	}
	thread.CreatedAt = f.backdate(60)

	for _, override := range overrides {
		override(thread)
	}

	if err := f.db.Create(thread).Error; err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// CreateReply persists a reply to the given parent thread.
func (f *Factory) CreateReply(author *models.User, parent *models.Thread) (*models.Thread, error) {
	reply := &models.Thread{
		Content:  gofakeit.Sentence(f.rng.Intn(12) + 4),
		AuthorID: author.ID,
		ParentID: &parent.ID,
	}
	if parent.CommunityID != nil {
		reply.CommunityID = parent.CommunityID
	}

	if err := f.db.Create(reply).Error; err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	return reply, nil
}
