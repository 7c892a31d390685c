package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleWindow = time.Minute

// LoginThrottle counts login and registration attempts per subject in fixed
// one-minute windows.
// Key format: throttle:login:<subject>
type LoginThrottle struct {
	client *redis.Client
	max    int64
}

// NewLoginThrottle allows maxPerMinute attempts per subject. Values below one
// default to five.
func NewLoginThrottle(client *redis.Client, maxPerMinute int) *LoginThrottle {
	if maxPerMinute <= 0 {
		maxPerMinute = 5
	}
	return &LoginThrottle{client: client, max: int64(maxPerMinute)}
}

// Allow records one attempt and reports whether it is within the limit. The
// error is non-nil when Redis could not be reached; callers fail open.
func (t *LoginThrottle) Allow(ctx context.Context, subject string) (bool, error) {
	key := t.key(subject)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, throttleWindow).Err(); err != nil {
			return true, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return n <= t.max, nil
}

func (t *LoginThrottle) key(subject string) string {
	return "throttle:login:" + subject
}
