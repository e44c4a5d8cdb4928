package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix    = "user:%d"
	SessionKeyPrefix = "session:%s"
)

const (
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SessionKey(sessionID string) string {
	return fmt.Sprintf(SessionKeyPrefix, sessionID)
}

// Invalidate removes key. A nil client is a no-op.
func Invalidate(ctx context.Context, rdb redis.Cmdable, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}

func InvalidateUser(ctx context.Context, rdb redis.Cmdable, userID uint) error {
	return Invalidate(ctx, rdb, UserKey(userID))
}
