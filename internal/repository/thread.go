package repository

import (
	"context"
	"errors"

	"tapestry/internal/models"

	"gorm.io/gorm"
)

// ThreadRepository defines persistence operations for threads.
type ThreadRepository interface {
	WithTx(tx *gorm.DB) ThreadRepository
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id uint) (*models.Thread, error)
	GetTree(ctx context.Context, id uint) (*models.Thread, error)
	ListTopLevel(ctx context.Context, limit, offset int) ([]models.Thread, error)
	CountTopLevel(ctx context.Context) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Thread, error)
	ListRepliesToAuthor(ctx context.Context, authorID uint) ([]models.Thread, error)
	Delete(ctx context.Context, ids []uint) error
	DeleteByCommunity(ctx context.Context, communityID uint) error
	DescendantIDs(ctx context.Context, rootID uint) ([]uint, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository returns a new ThreadRepository implementation.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// WithTx returns a ThreadRepository bound to the given transaction.
func (r *threadRepository) WithTx(tx *gorm.DB) ThreadRepository {
	return &threadRepository{db: tx}
}

func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *threadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thread", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &thread, nil
}

// GetTree resolves a thread with its author and community, its direct
// replies with their authors, and one further reply level so the UI can show
// nested conversations. Reply authors beyond the first level are projected
// to id and image.
func (r *threadRepository) GetTree(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Community", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Children.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Children.Children").
		Preload("Children.Children.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "image")
		}).
		First(&thread, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thread", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &thread, nil
}

// ListTopLevel returns the home feed page: threads that are not replies,
// newest first, with authors, communities, and reply-author previews.
func (r *threadRepository) ListTopLevel(ctx context.Context, limit, offset int) ([]models.Thread, error) {
	var threads []models.Thread
	if err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Community", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Children.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "image")
		}).
		Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

func (r *threadRepository) CountTopLevel(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Thread{}).
		Where("parent_id IS NULL").
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListByAuthor returns a user's own top-level threads with community and
// reply previews, newest first.
func (r *threadRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Thread, error) {
	var threads []models.Thread
	if err := r.db.WithContext(ctx).
		Where("author_id = ? AND parent_id IS NULL", authorID).
		Order("created_at DESC").
		Preload("Community", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "image")
		}).
		Preload("Children.Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "image")
		}).
		Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

// ListRepliesToAuthor returns replies written by other users to any of the
// author's threads, newest first. This backs the activity feed.
func (r *threadRepository) ListRepliesToAuthor(ctx context.Context, authorID uint) ([]models.Thread, error) {
	var threads []models.Thread
	if err := r.db.WithContext(ctx).
		Where("parent_id IN (?) AND author_id <> ?",
			r.db.Model(&models.Thread{}).Select("id").Where("author_id = ?", authorID),
			authorID,
		).
		Order("created_at DESC").
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "external_id", "name", "username", "image")
		}).
		Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

// Delete removes the threads with the given primary keys.
func (r *threadRepository) Delete(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&models.Thread{}, ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteByCommunity bulk-deletes every thread owned by the community.
func (r *threadRepository) DeleteByCommunity(ctx context.Context, communityID uint) error {
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Delete(&models.Thread{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DescendantIDs walks the reply graph breadth-first and returns the ids of
// every thread below rootID, not including rootID itself.
func (r *threadRepository) DescendantIDs(ctx context.Context, rootID uint) ([]uint, error) {
	var all []uint
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		var next []uint
		if err := r.db.WithContext(ctx).
			Model(&models.Thread{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}
