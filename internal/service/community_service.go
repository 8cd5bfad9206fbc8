package service

import (
	"context"
	"errors"

	"tapestry/internal/cache"
	"tapestry/internal/models"
	"tapestry/internal/repository"

	"gorm.io/gorm"
)

const defaultPageSize = 20

// ListParams are paging and filter options for listing communities or users.
type ListParams struct {
	SearchString string
	PageNumber   int
	PageSize     int
	SortDesc     bool
}

// Normalize applies the defaults: page 1, size 20, newest first.
func (p *ListParams) Normalize() {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
}

// Offset returns the number of records to skip for the requested page.
func (p *ListParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// CommunityPage is one page of communities plus a load-more indicator.
type CommunityPage struct {
	Communities []models.Community
	IsNext      bool
}

// CommunityService creates communities, maintains their cross-references,
// and assembles the denormalized community views.
type CommunityService struct {
	communityRepo  repository.CommunityRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	threadRepo     repository.ThreadRepository
	db             *gorm.DB
}

// NewCommunityService returns a new CommunityService. The db handle is used
// for the multi-entity mutations that must commit atomically.
func NewCommunityService(
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	threadRepo repository.ThreadRepository,
	db *gorm.DB,
) *CommunityService {
	return &CommunityService{
		communityRepo:  communityRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		threadRepo:     threadRepo,
		db:             db,
	}
}

// Create persists a new community owned by the given user. The creator is
// resolved by external id and linked through created_by; the member list
// starts empty.
func (s *CommunityService) Create(ctx context.Context, externalID, name, username, image, bio, createdByID string) (*models.Community, error) {
	creator, err := s.userRepo.GetByExternalID(ctx, createdByID)
	if err != nil {
		return nil, models.WrapOperation("create community", err)
	}

	community := &models.Community{
		ExternalID:      externalID,
		Name:            name,
		Username:        username,
		Image:           image,
		Bio:             bio,
		CreatedByUserID: &creator.ID,
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, models.WrapOperation("create community", err)
	}

	return community, nil
}

// UpdateInfo applies a partial update to a community's display fields.
func (s *CommunityService) UpdateInfo(ctx context.Context, externalID, name, username, image string) (*models.Community, error) {
	community, err := s.communityRepo.UpdateInfo(ctx, externalID, name, username, image)
	if err != nil {
		return nil, models.WrapOperation("update community info", err)
	}
	return community, nil
}

// Delete removes the community, every thread it owns, and every membership
// that references it. The cascade commits atomically; observers see either
// the full graph or none of it.
func (s *CommunityService) Delete(ctx context.Context, externalID string) (*models.Community, error) {
	var deleted models.Community

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_id = ?", externalID).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Community", externalID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Delete(&models.Community{}, deleted.ID).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := s.threadRepo.WithTx(tx).DeleteByCommunity(ctx, deleted.ID); err != nil {
			return err
		}
		return s.membershipRepo.WithTx(tx).DeleteByCommunity(ctx, deleted.ID)
	})
	if err != nil {
		return nil, models.WrapOperation("delete community", err)
	}

	cache.InvalidateCommunity(ctx, externalID)
	return &deleted, nil
}

// GetDetails resolves a community with its creator and projected member
// list. Absence is reported as (nil, nil); whether that is an error is the
// caller's decision.
func (s *CommunityService) GetDetails(ctx context.Context, externalID string) (*models.Community, error) {
	community, err := s.communityRepo.GetDetails(ctx, externalID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, models.WrapOperation("fetch community details", err)
	}
	return community, nil
}

// GetThreads resolves a community together with its thread list, each thread
// with its author and reply-author previews.
func (s *CommunityService) GetThreads(ctx context.Context, externalID string) (*models.Community, error) {
	community, err := s.communityRepo.GetWithThreads(ctx, externalID)
	if err != nil {
		return nil, models.WrapOperation("fetch community threads", err)
	}
	return community, nil
}

// List returns one page of communities matching the search string, with
// members resolved, plus whether a further page exists.
func (s *CommunityService) List(ctx context.Context, params ListParams) (*CommunityPage, error) {
	params.Normalize()

	total, err := s.communityRepo.CountMatching(ctx, params.SearchString)
	if err != nil {
		return nil, models.WrapOperation("fetch communities", err)
	}

	communities, err := s.communityRepo.Search(ctx, params.SearchString, params.PageSize, params.Offset(), params.SortDesc)
	if err != nil {
		return nil, models.WrapOperation("fetch communities", err)
	}

	return &CommunityPage{
		Communities: communities,
		IsNext:      total > int64(params.Offset()+len(communities)),
	}, nil
}
