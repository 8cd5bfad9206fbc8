package service

import (
	"context"

	"tapestry/internal/models"
	"tapestry/internal/repository"
)

// MembershipService enforces the community membership invariants: a
// membership pair exists at most once, joining a community twice is a
// conflict, and leaving is safe to repeat.
type MembershipService struct {
	communityRepo  repository.CommunityRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
}

// NewMembershipService returns a new MembershipService.
func NewMembershipService(
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
) *MembershipService {
	return &MembershipService{
		communityRepo:  communityRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
	}
}

// AddMember joins the user to the community. Both are addressed by external
// id; a missing entity is NotFound, joining twice is a Conflict. The second
// join is rejected loudly rather than treated as a no-op.
func (s *MembershipService) AddMember(ctx context.Context, communityID, userID string) (*models.Community, error) {
	community, err := s.communityRepo.GetByExternalID(ctx, communityID)
	if err != nil {
		return nil, models.WrapOperation("add member to community", err)
	}

	user, err := s.userRepo.GetByExternalID(ctx, userID)
	if err != nil {
		return nil, models.WrapOperation("add member to community", err)
	}

	exists, err := s.membershipRepo.Exists(ctx, community.ID, user.ID)
	if err != nil {
		return nil, models.WrapOperation("add member to community", err)
	}
	if exists {
		return nil, models.WrapOperation("add member to community",
			models.NewConflictError("User is already a member of the community"))
	}

	membership := &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        models.CommunityMembershipRoleMember,
	}
	// Two concurrent joins can both pass the Exists check; the relation's
	// composite primary key resolves the race by failing the later insert
	// with the same Conflict error.
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, models.WrapOperation("add member to community", err)
	}

	return community, nil
}

// RemoveMember detaches the user from the community. Both entities must
// exist (NotFound otherwise), but removing a membership that was never there
// still succeeds. This asymmetry with AddMember is deliberate and mirrors
// the join/leave semantics callers rely on.
func (s *MembershipService) RemoveMember(ctx context.Context, userID, communityID string) error {
	uid, err := s.userRepo.GetIDByExternalID(ctx, userID)
	if err != nil {
		return models.WrapOperation("remove user from community", err)
	}

	cid, err := s.communityRepo.GetIDByExternalID(ctx, communityID)
	if err != nil {
		return models.WrapOperation("remove user from community", err)
	}

	if err := s.membershipRepo.Delete(ctx, cid, uid); err != nil {
		return models.WrapOperation("remove user from community", err)
	}
	return nil
}
