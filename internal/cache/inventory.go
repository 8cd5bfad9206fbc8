package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%s"
	CommunityKeyPrefix = "community:%s"
	ThreadKeyPrefix    = "thread:%d"
)

const (
	UserTTL      = 5 * time.Minute
	CommunityTTL = 10 * time.Minute
	ThreadTTL    = 2 * time.Minute
)

// UserKey builds the cache key for a user, addressed by external id.
func UserKey(externalID string) string {
	return fmt.Sprintf(UserKeyPrefix, externalID)
}

// CommunityKey builds the cache key for a community, addressed by external id.
func CommunityKey(externalID string) string {
	return fmt.Sprintf(CommunityKeyPrefix, externalID)
}

// ThreadKey builds the cache key for a thread by internal id.
func ThreadKey(threadID uint) string {
	return fmt.Sprintf(ThreadKeyPrefix, threadID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, externalID string) {
	Invalidate(ctx, UserKey(externalID))
}

func InvalidateCommunity(ctx context.Context, externalID string) {
	Invalidate(ctx, CommunityKey(externalID))
}

func InvalidateThread(ctx context.Context, threadID uint) {
	Invalidate(ctx, ThreadKey(threadID))
}
