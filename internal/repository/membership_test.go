package repository

import (
	"context"
	"testing"

	"tapestry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipRepository_CreateAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	community := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", user)

	exists, err := repo.Exists(ctx, community.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        models.CommunityMembershipRoleMember,
	}))

	exists, err = repo.Exists(ctx, community.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMembershipRepository_Create_CommunityGoneIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	community := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", user)

	// the community disappears after the caller resolved it but before the
	// insert runs
	require.NoError(t, db.Delete(&models.Community{}, community.ID).Error)

	err := repo.Create(ctx, &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        models.CommunityMembershipRoleMember,
	})
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	var count int64
	require.NoError(t, db.Model(&models.CommunityMembership{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMembershipRepository_Create_DuplicatePairIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	community := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", user)

	pair := func() *models.CommunityMembership {
		return &models.CommunityMembership{
			CommunityID: community.ID,
			UserID:      user.ID,
			Role:        models.CommunityMembershipRoleMember,
		}
	}

	require.NoError(t, repo.Create(ctx, pair()))

	// the composite primary key rejects the same pair a second time
	err := repo.Create(ctx, pair())
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))

	var count int64
	require.NoError(t, db.Model(&models.CommunityMembership{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMembershipRepository_Delete_AbsentPairIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	community := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", user)

	// never joined; delete still succeeds
	require.NoError(t, repo.Delete(ctx, community.ID, user.ID))

	require.NoError(t, repo.Create(ctx, &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
	}))
	require.NoError(t, repo.Delete(ctx, community.ID, user.ID))

	exists, err := repo.Exists(ctx, community.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// and again, after it is already gone
	require.NoError(t, repo.Delete(ctx, community.ID, user.ID))
}

func TestMembershipRepository_DeleteByCommunity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	u1 := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	u2 := createTestUser(t, db, "user_2", "Grace Hopper", "ghopper")
	alpha := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", u1)
	beta := createTestCommunity(t, db, "org_beta", "Beta", "beta", u1)

	for _, m := range []models.CommunityMembership{
		{CommunityID: alpha.ID, UserID: u1.ID},
		{CommunityID: alpha.ID, UserID: u2.ID},
		{CommunityID: beta.ID, UserID: u1.ID},
	} {
		m := m
		require.NoError(t, repo.Create(ctx, &m))
	}

	require.NoError(t, repo.DeleteByCommunity(ctx, alpha.ID))

	var count int64
	require.NoError(t, db.Model(&models.CommunityMembership{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the other community's membership survives
	exists, err := repo.Exists(ctx, beta.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMembershipRepository_CommunitiesOfUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	u1 := createTestUser(t, db, "user_1", "Ada Lovelace", "ada")
	u2 := createTestUser(t, db, "user_2", "Grace Hopper", "ghopper")
	alpha := createTestCommunity(t, db, "org_alpha", "Alpha", "alpha", u1)
	createTestCommunity(t, db, "org_beta", "Beta", "beta", u1)

	require.NoError(t, repo.Create(ctx, &models.CommunityMembership{CommunityID: alpha.ID, UserID: u2.ID}))

	communities, err := repo.CommunitiesOfUser(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Equal(t, "org_alpha", communities[0].ExternalID)

	// creating a community does not make the creator a member
	communities, err = repo.CommunitiesOfUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, communities)
}
