package util

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/redis/go-redis/v9"
)

// Every function here is a no-op when Redis is not configured; tokens then stay valid until expiry.

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

func revokedTokenKey(jti string) string {
	return "revoked:" + jti
}

// TrackSession records jti in the user's session set so it can be revoked in bulk later.
// The set lives as long as the newest token.
func TrackSession(ctx context.Context, userID uint, jti string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	key := userSessionsKey(userID)
	if err := rdb.SAdd(ctx, key, jti).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, key, ttl).Err()
}

// RevokeToken marks jti as revoked for ttl and drops it from the user's session set.
func RevokeToken(ctx context.Context, userID uint, jti string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	if err := rdb.Set(ctx, revokedTokenKey(jti), "1", ttl).Err(); err != nil {
		return err
	}
	return rdb.SRem(ctx, userSessionsKey(userID), jti).Err()
}

// IsTokenRevoked reports whether jti was revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeUserSessions revokes every tracked token of the user for ttl and deletes the set.
func RevokeUserSessions(ctx context.Context, userID uint, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	key := userSessionsKey(userID)
	members, err := rdb.SMembers(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, jti := range members {
		if err := rdb.Set(ctx, revokedTokenKey(jti), "1", ttl).Err(); err != nil {
			return err
		}
	}
	return rdb.Del(ctx, key).Err()
}
