package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	UserKeyPrefix      = "user:%s"
	PostKeyPrefix      = "post:%s"
	CommunityKeyPrefix = "community:%s"
	TrendingKey        = "posts:trending"
	CommunityListKey   = "communities:all"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 10 * time.Minute
	CommunityTTL = 10 * time.Minute
	TrendingTTL  = 2 * time.Minute
)

func UserKey(userID uuid.UUID) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uuid.UUID) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CommunityKey(communityID uuid.UUID) string {
	return fmt.Sprintf(CommunityKeyPrefix, communityID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uuid.UUID) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uuid.UUID) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, TrendingKey)
}

func InvalidateCommunity(ctx context.Context, communityID uuid.UUID) {
	Invalidate(ctx, CommunityKey(communityID))
	Invalidate(ctx, CommunityListKey)
}
