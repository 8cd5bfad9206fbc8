package service

import (
	"context"

	"tapestry/internal/models"
	"tapestry/internal/repository"

	"gorm.io/gorm"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByExternalIDFn   func(context.Context, string) (*models.User, error)
	getIDByExternalIDFn func(context.Context, string) (uint, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	createFn            func(context.Context, *models.User) error
	updateFn            func(context.Context, *models.User) error
	searchFn            func(context.Context, string, int, int, bool) ([]models.User, error)
	countMatchingFn     func(context.Context, string) (int64, error)
}

func (s *userRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getByExternalIDFn(ctx, externalID)
}
func (s *userRepoStub) GetIDByExternalID(ctx context.Context, externalID string) (uint, error) {
	return s.getIDByExternalIDFn(ctx, externalID)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, search string, limit, offset int, sortDesc bool) ([]models.User, error) {
	return s.searchFn(ctx, search, limit, offset, sortDesc)
}
func (s *userRepoStub) CountMatching(ctx context.Context, search string) (int64, error) {
	return s.countMatchingFn(ctx, search)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByExternalIDFn: func(_ context.Context, externalID string) (*models.User, error) {
			return &models.User{ID: 1, ExternalID: externalID}, nil
		},
		getIDByExternalIDFn: func(_ context.Context, _ string) (uint, error) { return 1, nil },
		getByUsernameFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:            func(_ context.Context, _ *models.User) error { return nil },
		updateFn:            func(_ context.Context, _ *models.User) error { return nil },
		searchFn:            func(_ context.Context, _ string, _, _ int, _ bool) ([]models.User, error) { return nil, nil },
		countMatchingFn:     func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// communityRepoStub is a stub for repository.CommunityRepository.
type communityRepoStub struct {
	getByExternalIDFn   func(context.Context, string) (*models.Community, error)
	getIDByExternalIDFn func(context.Context, string) (uint, error)
	getDetailsFn        func(context.Context, string) (*models.Community, error)
	getWithThreadsFn    func(context.Context, string) (*models.Community, error)
	createFn            func(context.Context, *models.Community) error
	updateInfoFn        func(context.Context, string, string, string, string) (*models.Community, error)
	searchFn            func(context.Context, string, int, int, bool) ([]models.Community, error)
	countMatchingFn     func(context.Context, string) (int64, error)
}

func (s *communityRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.Community, error) {
	return s.getByExternalIDFn(ctx, externalID)
}
func (s *communityRepoStub) GetIDByExternalID(ctx context.Context, externalID string) (uint, error) {
	return s.getIDByExternalIDFn(ctx, externalID)
}
func (s *communityRepoStub) GetDetails(ctx context.Context, externalID string) (*models.Community, error) {
	return s.getDetailsFn(ctx, externalID)
}
func (s *communityRepoStub) GetWithThreads(ctx context.Context, externalID string) (*models.Community, error) {
	return s.getWithThreadsFn(ctx, externalID)
}
func (s *communityRepoStub) Create(ctx context.Context, community *models.Community) error {
	return s.createFn(ctx, community)
}
func (s *communityRepoStub) UpdateInfo(ctx context.Context, externalID, name, username, image string) (*models.Community, error) {
	return s.updateInfoFn(ctx, externalID, name, username, image)
}
func (s *communityRepoStub) Search(ctx context.Context, search string, limit, offset int, sortDesc bool) ([]models.Community, error) {
	return s.searchFn(ctx, search, limit, offset, sortDesc)
}
func (s *communityRepoStub) CountMatching(ctx context.Context, search string) (int64, error) {
	return s.countMatchingFn(ctx, search)
}

func noopCommunityRepo() *communityRepoStub {
	return &communityRepoStub{
		getByExternalIDFn: func(_ context.Context, externalID string) (*models.Community, error) {
			return &models.Community{ID: 1, ExternalID: externalID}, nil
		},
		getIDByExternalIDFn: func(_ context.Context, _ string) (uint, error) { return 1, nil },
		getDetailsFn: func(_ context.Context, externalID string) (*models.Community, error) {
			return &models.Community{ID: 1, ExternalID: externalID}, nil
		},
		getWithThreadsFn: func(_ context.Context, externalID string) (*models.Community, error) {
			return &models.Community{ID: 1, ExternalID: externalID}, nil
		},
		createFn: func(_ context.Context, _ *models.Community) error { return nil },
		updateInfoFn: func(_ context.Context, externalID, _, _, _ string) (*models.Community, error) {
			return &models.Community{ID: 1, ExternalID: externalID}, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int, _ bool) ([]models.Community, error) {
			return nil, nil
		},
		countMatchingFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// membershipRepoStub is a stub for repository.MembershipRepository.
type membershipRepoStub struct {
	existsFn            func(context.Context, uint, uint) (bool, error)
	createFn            func(context.Context, *models.CommunityMembership) error
	deleteFn            func(context.Context, uint, uint) error
	deleteByCommunityFn func(context.Context, uint) error
	communitiesOfUserFn func(context.Context, uint) ([]models.Community, error)
}

func (s *membershipRepoStub) WithTx(_ *gorm.DB) repository.MembershipRepository { return s }
func (s *membershipRepoStub) Exists(ctx context.Context, communityID, userID uint) (bool, error) {
	return s.existsFn(ctx, communityID, userID)
}
func (s *membershipRepoStub) Create(ctx context.Context, membership *models.CommunityMembership) error {
	return s.createFn(ctx, membership)
}
func (s *membershipRepoStub) Delete(ctx context.Context, communityID, userID uint) error {
	return s.deleteFn(ctx, communityID, userID)
}
func (s *membershipRepoStub) DeleteByCommunity(ctx context.Context, communityID uint) error {
	return s.deleteByCommunityFn(ctx, communityID)
}
func (s *membershipRepoStub) CommunitiesOfUser(ctx context.Context, userID uint) ([]models.Community, error) {
	return s.communitiesOfUserFn(ctx, userID)
}

func noopMembershipRepo() *membershipRepoStub {
	return &membershipRepoStub{
		existsFn:            func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		createFn:            func(_ context.Context, _ *models.CommunityMembership) error { return nil },
		deleteFn:            func(_ context.Context, _, _ uint) error { return nil },
		deleteByCommunityFn: func(_ context.Context, _ uint) error { return nil },
		communitiesOfUserFn: func(_ context.Context, _ uint) ([]models.Community, error) { return nil, nil },
	}
}

// threadRepoStub is a stub for repository.ThreadRepository.
type threadRepoStub struct {
	createFn              func(context.Context, *models.Thread) error
	getByIDFn             func(context.Context, uint) (*models.Thread, error)
	getTreeFn             func(context.Context, uint) (*models.Thread, error)
	listTopLevelFn        func(context.Context, int, int) ([]models.Thread, error)
	countTopLevelFn       func(context.Context) (int64, error)
	listByAuthorFn        func(context.Context, uint) ([]models.Thread, error)
	listRepliesToAuthorFn func(context.Context, uint) ([]models.Thread, error)
	deleteFn              func(context.Context, []uint) error
	deleteByCommunityFn   func(context.Context, uint) error
	descendantIDsFn       func(context.Context, uint) ([]uint, error)
}

func (s *threadRepoStub) WithTx(_ *gorm.DB) repository.ThreadRepository { return s }
func (s *threadRepoStub) Create(ctx context.Context, thread *models.Thread) error {
	return s.createFn(ctx, thread)
}
func (s *threadRepoStub) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	return s.getByIDFn(ctx, id)
}
func (s *threadRepoStub) GetTree(ctx context.Context, id uint) (*models.Thread, error) {
	return s.getTreeFn(ctx, id)
}
func (s *threadRepoStub) ListTopLevel(ctx context.Context, limit, offset int) ([]models.Thread, error) {
	return s.listTopLevelFn(ctx, limit, offset)
}
func (s *threadRepoStub) CountTopLevel(ctx context.Context) (int64, error) {
	return s.countTopLevelFn(ctx)
}
func (s *threadRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]models.Thread, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *threadRepoStub) ListRepliesToAuthor(ctx context.Context, authorID uint) ([]models.Thread, error) {
	return s.listRepliesToAuthorFn(ctx, authorID)
}
func (s *threadRepoStub) Delete(ctx context.Context, ids []uint) error {
	return s.deleteFn(ctx, ids)
}
func (s *threadRepoStub) DeleteByCommunity(ctx context.Context, communityID uint) error {
	return s.deleteByCommunityFn(ctx, communityID)
}
func (s *threadRepoStub) DescendantIDs(ctx context.Context, rootID uint) ([]uint, error) {
	return s.descendantIDsFn(ctx, rootID)
}

func noopThreadRepo() *threadRepoStub {
	return &threadRepoStub{
		createFn:              func(_ context.Context, _ *models.Thread) error { return nil },
		getByIDFn:             func(_ context.Context, id uint) (*models.Thread, error) { return &models.Thread{ID: id}, nil },
		getTreeFn:             func(_ context.Context, id uint) (*models.Thread, error) { return &models.Thread{ID: id}, nil },
		listTopLevelFn:        func(_ context.Context, _, _ int) ([]models.Thread, error) { return nil, nil },
		countTopLevelFn:       func(_ context.Context) (int64, error) { return 0, nil },
		listByAuthorFn:        func(_ context.Context, _ uint) ([]models.Thread, error) { return nil, nil },
		listRepliesToAuthorFn: func(_ context.Context, _ uint) ([]models.Thread, error) { return nil, nil },
		deleteFn:              func(_ context.Context, _ []uint) error { return nil },
		deleteByCommunityFn:   func(_ context.Context, _ uint) error { return nil },
		descendantIDsFn:       func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}
