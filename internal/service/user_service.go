package service

import (
	"context"

	"tapestry/internal/models"
	"tapestry/internal/repository"
)

// UserPage is one page of users plus a load-more indicator.
type UserPage struct {
	Users  []models.User
	IsNext bool
}

// UserService mirrors identity-provider users into the entity store and
// serves the user-side aggregations.
type UserService struct {
	userRepo       repository.UserRepository
	threadRepo     repository.ThreadRepository
	membershipRepo repository.MembershipRepository
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	threadRepo repository.ThreadRepository,
	membershipRepo repository.MembershipRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		threadRepo:     threadRepo,
		membershipRepo: membershipRepo,
	}
}

// Sync creates or updates the user mirrored from the identity provider.
// Called on first authentication and on profile edits.
func (s *UserService) Sync(ctx context.Context, externalID, name, username, image, bio string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if !models.IsNotFound(err) {
			return nil, models.WrapOperation("sync user", err)
		}
		// Reject a username held by another identity up front; the unique
		// index still backs this up at insert time.
		taken, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, models.WrapOperation("sync user", err)
		}
		if taken != nil && taken.ExternalID != externalID {
			return nil, models.WrapOperation("sync user",
				models.NewValidationError("Username is already taken"))
		}

		user = &models.User{
			ExternalID: externalID,
			Name:       name,
			Username:   username,
			Image:      image,
			Bio:        bio,
			Onboarded:  true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, models.WrapOperation("sync user", err)
		}
		return user, nil
	}

	user.Name = name
	user.Username = username
	user.Image = image
	user.Bio = bio
	user.Onboarded = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.WrapOperation("sync user", err)
	}
	return user, nil
}

// Get resolves a user by external id.
func (s *UserService) Get(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, models.WrapOperation("fetch user", err)
	}
	return user, nil
}

// List returns one page of users matching the search string.
func (s *UserService) List(ctx context.Context, params ListParams) (*UserPage, error) {
	params.Normalize()

	total, err := s.userRepo.CountMatching(ctx, params.SearchString)
	if err != nil {
		return nil, models.WrapOperation("fetch users", err)
	}

	users, err := s.userRepo.Search(ctx, params.SearchString, params.PageSize, params.Offset(), params.SortDesc)
	if err != nil {
		return nil, models.WrapOperation("fetch users", err)
	}

	return &UserPage{
		Users:  users,
		IsNext: total > int64(params.Offset()+len(users)),
	}, nil
}

// GetThreads returns the user's own top-level threads with populated
// community and reply previews.
func (s *UserService) GetThreads(ctx context.Context, externalID string) (*models.User, []models.Thread, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, nil, models.WrapOperation("fetch user threads", err)
	}

	threads, err := s.threadRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, nil, models.WrapOperation("fetch user threads", err)
	}
	return user, threads, nil
}

// GetCommunities projects the communities the user belongs to.
func (s *UserService) GetCommunities(ctx context.Context, externalID string) ([]models.Community, error) {
	uid, err := s.userRepo.GetIDByExternalID(ctx, externalID)
	if err != nil {
		return nil, models.WrapOperation("fetch user communities", err)
	}

	communities, err := s.membershipRepo.CommunitiesOfUser(ctx, uid)
	if err != nil {
		return nil, models.WrapOperation("fetch user communities", err)
	}
	return communities, nil
}

// GetActivity returns replies by other users to the user's threads.
func (s *UserService) GetActivity(ctx context.Context, externalID string) ([]models.Thread, error) {
	uid, err := s.userRepo.GetIDByExternalID(ctx, externalID)
	if err != nil {
		return nil, models.WrapOperation("fetch user activity", err)
	}

	replies, err := s.threadRepo.ListRepliesToAuthor(ctx, uid)
	if err != nil {
		return nil, models.WrapOperation("fetch user activity", err)
	}
	return replies, nil
}
