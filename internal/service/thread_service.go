package service

import (
	"context"

	"tapestry/internal/cache"
	"tapestry/internal/models"
	"tapestry/internal/repository"

	"gorm.io/gorm"
)

// ThreadPage is one page of top-level threads plus a load-more indicator.
type ThreadPage struct {
	Threads []models.Thread
	IsNext  bool
}

// ThreadService creates threads and replies and assembles thread trees.
type ThreadService struct {
	threadRepo    repository.ThreadRepository
	userRepo      repository.UserRepository
	communityRepo repository.CommunityRepository
	db            *gorm.DB
}

// NewThreadService returns a new ThreadService.
func NewThreadService(
	threadRepo repository.ThreadRepository,
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	db *gorm.DB,
) *ThreadService {
	return &ThreadService{
		threadRepo:    threadRepo,
		userRepo:      userRepo,
		communityRepo: communityRepo,
		db:            db,
	}
}

// Create posts a new top-level thread. The author must exist; when a
// community external id is given the thread is attached to that community.
func (s *ThreadService) Create(ctx context.Context, authorID, content, communityID string) (*models.Thread, error) {
	author, err := s.userRepo.GetByExternalID(ctx, authorID)
	if err != nil {
		return nil, models.WrapOperation("create thread", err)
	}

	thread := &models.Thread{
		Content:  content,
		AuthorID: author.ID,
	}

	if communityID != "" {
		cid, err := s.communityRepo.GetIDByExternalID(ctx, communityID)
		if err != nil {
			return nil, models.WrapOperation("create thread", err)
		}
		thread.CommunityID = &cid
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, models.WrapOperation("create thread", err)
	}
	return thread, nil
}

// AddReply posts a reply under the given parent thread. Parent resolution
// and reply creation commit together; a reply can never exist without its
// parent's children list reflecting it.
func (s *ThreadService) AddReply(ctx context.Context, parentID uint, authorID, content string) (*models.Thread, error) {
	author, err := s.userRepo.GetByExternalID(ctx, authorID)
	if err != nil {
		return nil, models.WrapOperation("add reply to thread", err)
	}

	reply := &models.Thread{
		Content:  content,
		AuthorID: author.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.threadRepo.WithTx(tx)
		parent, err := repo.GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		reply.ParentID = &parent.ID
		return repo.Create(ctx, reply)
	})
	if err != nil {
		return nil, models.WrapOperation("add reply to thread", err)
	}

	cache.InvalidateThread(ctx, parentID)
	return reply, nil
}

// Get resolves a thread with its author, community, and two levels of
// replies.
func (s *ThreadService) Get(ctx context.Context, id uint) (*models.Thread, error) {
	thread, err := s.threadRepo.GetTree(ctx, id)
	if err != nil {
		return nil, models.WrapOperation("fetch thread", err)
	}
	return thread, nil
}

// Feed returns one page of top-level threads, newest first.
func (s *ThreadService) Feed(ctx context.Context, pageNumber, pageSize int) (*ThreadPage, error) {
	params := ListParams{PageNumber: pageNumber, PageSize: pageSize}
	params.Normalize()

	total, err := s.threadRepo.CountTopLevel(ctx)
	if err != nil {
		return nil, models.WrapOperation("fetch threads", err)
	}

	threads, err := s.threadRepo.ListTopLevel(ctx, params.PageSize, params.Offset())
	if err != nil {
		return nil, models.WrapOperation("fetch threads", err)
	}

	return &ThreadPage{
		Threads: threads,
		IsNext:  total > int64(params.Offset()+len(threads)),
	}, nil
}

// Delete removes a thread and every reply underneath it in one commit.
func (s *ThreadService) Delete(ctx context.Context, id uint) error {
	descendants, err := s.threadRepo.DescendantIDs(ctx, id)
	if err != nil {
		return models.WrapOperation("delete thread", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.threadRepo.WithTx(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, append(descendants, id))
	})
	if err != nil {
		return models.WrapOperation("delete thread", err)
	}

	cache.InvalidateThread(ctx, id)
	return nil
}
