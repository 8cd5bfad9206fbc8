package repository

import (
	"context"
	"errors"

	"tapestry/internal/models"

	"gorm.io/gorm"
)

// MembershipRepository defines persistence operations on the single
// community-membership relation. Both "members of a community" and
// "communities of a user" are projections of this table.
type MembershipRepository interface {
	WithTx(tx *gorm.DB) MembershipRepository
	Exists(ctx context.Context, communityID, userID uint) (bool, error)
	Create(ctx context.Context, membership *models.CommunityMembership) error
	Delete(ctx context.Context, communityID, userID uint) error
	DeleteByCommunity(ctx context.Context, communityID uint) error
	CommunitiesOfUser(ctx context.Context, userID uint) ([]models.Community, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository returns a new MembershipRepository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// WithTx returns a MembershipRepository bound to the given transaction.
func (r *membershipRepository) WithTx(tx *gorm.DB) MembershipRepository {
	return &membershipRepository{db: tx}
}

func (r *membershipRepository) Exists(ctx context.Context, communityID, userID uint) (bool, error) {
	var membership models.CommunityMembership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// Create inserts the membership pair. The community is re-checked inside the
// insert transaction: a caller may have resolved it just before a cascade
// delete committed, and the insert must not land on a community that is gone.
func (r *membershipRepository) Create(ctx context.Context, membership *models.CommunityMembership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Community{}).
			Where("id = ?", membership.CommunityID).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count == 0 {
			return models.NewNotFoundError("Community", membership.CommunityID)
		}

		if err := tx.Create(membership).Error; err != nil {
			// The composite primary key turns a concurrent duplicate join into
			// a constraint violation rather than a second row.
			if IsUniqueConstraintError(err) {
				return models.NewConflictError("User is already a member of the community")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
}

// Delete removes the membership pair. Deleting a pair that does not exist is
// not an error; the relation simply stays absent.
func (r *membershipRepository) Delete(ctx context.Context, communityID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMembership{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *membershipRepository) DeleteByCommunity(ctx context.Context, communityID uint) error {
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Delete(&models.CommunityMembership{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CommunitiesOfUser projects the communities a user belongs to.
func (r *membershipRepository) CommunitiesOfUser(ctx context.Context, userID uint) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).
		Joins("JOIN community_memberships cm ON cm.community_id = communities.id").
		Where("cm.user_id = ?", userID).
		Order("communities.created_at DESC").
		Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}
