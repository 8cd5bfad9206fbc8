package repository

import (
	"context"
	"errors"
	"strings"

	"tapestry/internal/cache"
	"tapestry/internal/models"

	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for communities.
type CommunityRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Community, error)
	GetIDByExternalID(ctx context.Context, externalID string) (uint, error)
	GetDetails(ctx context.Context, externalID string) (*models.Community, error)
	GetWithThreads(ctx context.Context, externalID string) (*models.Community, error)
	Create(ctx context.Context, community *models.Community) error
	UpdateInfo(ctx context.Context, externalID, name, username, image string) (*models.Community, error)
	Search(ctx context.Context, search string, limit, offset int, sortDesc bool) ([]models.Community, error)
	CountMatching(ctx context.Context, search string) (int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Community, error) {
	var community models.Community
	key := cache.CommunityKey(externalID)

	err := cache.Aside(ctx, key, &community, cache.CommunityTTL, func() error {
		if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&community).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Community", externalID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &community, nil
}

// GetIDByExternalID resolves only the internal id, projecting away the rest
// of the row.
func (r *communityRepository) GetIDByExternalID(ctx context.Context, externalID string) (uint, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("external_id = ?", externalID).
		First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Community", externalID)
		}
		return 0, models.NewInternalError(err)
	}
	return community.ID, nil
}

// GetDetails resolves a community together with its creator (full record)
// and members. Members are projected to name, username, image and the two
// ids only; callers showing a member list do not need bios.
func (r *communityRepository) GetDetails(ctx context.Context, externalID string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).
		Preload("CreatedByUser").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Select("users.id", "users.external_id", "users.name", "users.username", "users.image")
		}).
		Where("external_id = ?", externalID).
		First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", externalID)
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

// GetWithThreads resolves a community and its top-level threads. Thread
// authors carry full display identity; reply authors are projected to id and
// image only, enough for an avatar stack.
func (r *communityRepository) GetWithThreads(ctx context.Context, externalID string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).
		Preload("Threads", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order("created_at DESC")
		}).
		Preload("Threads.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Threads.Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Threads.Children.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "image")
		}).
		Where("external_id = ?", externalID).
		First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", externalID)
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("Community already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateInfo applies a partial update to display fields only; membership and
// thread references are untouched.
func (r *communityRepository) UpdateInfo(ctx context.Context, externalID, name, username, image string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", externalID)
		}
		return nil, models.NewInternalError(err)
	}

	updates := map[string]any{
		"name":     name,
		"username": username,
		"image":    image,
	}
	if err := r.db.WithContext(ctx).Model(&community).Updates(updates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateCommunity(ctx, externalID)
	return &community, nil
}

func (r *communityRepository) Search(ctx context.Context, search string, limit, offset int, sortDesc bool) ([]models.Community, error) {
	var communities []models.Community
	q := r.db.WithContext(ctx).Model(&models.Community{})
	q = applyCommunitySearch(q, search)
	q = q.Preload("Members").Order(orderByCreatedAt(sortDesc)).Limit(limit).Offset(offset)
	if err := q.Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityRepository) CountMatching(ctx context.Context, search string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Community{})
	q = applyCommunitySearch(q, search)
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func applyCommunitySearch(q *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return q.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern)
}
