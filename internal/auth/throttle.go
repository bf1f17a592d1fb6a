package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Throttle locks a username out of login after MaxFailed failures inside
// Window. The counter expires Window after the first failure. A nil
// *Throttle never blocks.
type Throttle struct {
	rdb       *redis.Client
	maxFailed int64
	window    time.Duration
}

func NewThrottle(rdb *redis.Client, maxFailed int, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, maxFailed: int64(maxFailed), window: window}
}

func failedKey(username string) string { return "jobly:login:failed:" + username }

// Blocked reports whether username has used up its failures.
func (t *Throttle) Blocked(ctx context.Context, username string) (bool, error) {
	if t == nil {
		return false, nil
	}
	n, err := t.rdb.Get(ctx, failedKey(username)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login failures: %w", err)
	}
	return n >= t.maxFailed, nil
}

// Fail records one failed attempt.
func (t *Throttle) Fail(ctx context.Context, username string) error {
	if t == nil {
		return nil
	}
	key := failedKey(username)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("count login failure: %w", err)
	}
	if n == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("expire login failures: %w", err)
		}
	}
	return nil
}

// Reset clears the failures after a successful login.
func (t *Throttle) Reset(ctx context.Context, username string) error {
	if t == nil {
		return nil
	}
	return t.rdb.Del(ctx, failedKey(username)).Err()
}
