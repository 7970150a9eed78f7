package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginWindow      = time.Minute
	loginMaxAttempts = 20
)

// LoginLimiter counts login attempts per client IP in a fixed window backed
// by Redis. Key format: login_attempts:<ip>
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// Allow records one attempt for key and reports whether it is still within
// the window budget. The expiry is set when the window opens, so the counter
// resets loginWindow after the first attempt.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, loginWindow).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= loginMaxAttempts, nil
}

func (l *LoginLimiter) key(ip string) string {
	return fmt.Sprintf("login_attempts:%s", ip)
}
