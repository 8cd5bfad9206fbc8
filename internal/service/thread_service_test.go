package service

import (
	"context"
	"fmt"
	"testing"

	"tapestry/internal/models"
	"tapestry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newThreadService(db *gorm.DB) *ThreadService {
	return NewThreadService(
		repository.NewThreadRepository(db),
		repository.NewUserRepository(db),
		repository.NewCommunityRepository(db),
		db,
	)
}

func TestThreadService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	author := mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")
	community := &models.Community{ExternalID: "org_alpha", Name: "Alpha", Username: "alpha"}
	require.NoError(t, db.Create(community).Error)

	thread, err := svc.Create(ctx, "user_1", "hello threads", "org_alpha")
	require.NoError(t, err)
	assert.Equal(t, author.ID, thread.AuthorID)
	require.NotNil(t, thread.CommunityID)
	assert.Equal(t, community.ID, *thread.CommunityID)

	// without a community id the thread is personal
	personal, err := svc.Create(ctx, "user_1", "just me", "")
	require.NoError(t, err)
	assert.Nil(t, personal.CommunityID)
}

func TestThreadService_Create_UnknownReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user_ghost", "content", "")
	assert.True(t, models.IsNotFound(err))

	mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")
	_, err = svc.Create(ctx, "user_1", "content", "org_ghost")
	assert.True(t, models.IsNotFound(err))

	var count int64
	require.NoError(t, db.Model(&models.Thread{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestThreadService_AddReply(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")
	mustCreateUser(t, db, "user_2", "Grace Hopper", "ghopper")

	root, err := svc.Create(ctx, "user_1", "root", "")
	require.NoError(t, err)

	reply, err := svc.AddReply(ctx, root.ID, "user_2", "a reply")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	tree, err := svc.Get(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "a reply", tree.Children[0].Content)
	assert.Equal(t, "Grace Hopper", tree.Children[0].Author.Name)
}

func TestThreadService_AddReply_MissingParentLeavesNoOrphan(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")

	_, err := svc.AddReply(ctx, 999, "user_1", "reply to nothing")
	assert.True(t, models.IsNotFound(err))

	var count int64
	require.NoError(t, db.Model(&models.Thread{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestThreadService_Feed_Pagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")
	for i := 1; i <= 5; i++ {
		_, err := svc.Create(ctx, "user_1", fmt.Sprintf("thread %d", i), "")
		require.NoError(t, err)
	}
	// replies never show up in the feed
	first, err := svc.Feed(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, first.Threads, 5)
	_, err = svc.AddReply(ctx, first.Threads[0].ID, "user_1", "a reply")
	require.NoError(t, err)

	var seen []uint
	for page := 1; page <= 3; page++ {
		result, err := svc.Feed(ctx, page, 2)
		require.NoError(t, err)
		for _, thread := range result.Threads {
			seen = append(seen, thread.ID)
		}
		assert.Equal(t, page < 3, result.IsNext, "page %d", page)
	}
	assert.Len(t, seen, 5)

	unique := make(map[uint]struct{}, len(seen))
	for _, id := range seen {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, 5)
}

func TestThreadService_Delete_RemovesDescendants(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)
	ctx := context.Background()

	mustCreateUser(t, db, "user_1", "Ada Lovelace", "ada")
	mustCreateUser(t, db, "user_2", "Grace Hopper", "ghopper")

	root, err := svc.Create(ctx, "user_1", "root", "")
	require.NoError(t, err)
	reply, err := svc.AddReply(ctx, root.ID, "user_2", "reply")
	require.NoError(t, err)
	_, err = svc.AddReply(ctx, reply.ID, "user_1", "nested")
	require.NoError(t, err)
	other, err := svc.Create(ctx, "user_2", "unrelated", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, root.ID))

	var remaining []models.Thread
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
}

func TestThreadService_Delete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newThreadService(db)

	err := svc.Delete(context.Background(), 999)
	assert.True(t, models.IsNotFound(err))
}
