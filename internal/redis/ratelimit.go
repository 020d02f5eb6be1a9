package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key pattern: ratelimit:{user_id}:messages, fixed window.

type RateLimitConfig struct {
	MessageLimit  int           // Max sends per window
	MessageWindow time.Duration // Send rate limit window
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: 60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// AllowMessage checks if a user can send a message.
func (r *RateLimiter) AllowMessage(ctx context.Context, userID string) (RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:messages", userID)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.config.MessageWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, err
	}

	count := int(incr.Val())
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		ttl = r.config.MessageWindow
	}

	remaining := r.config.MessageLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= r.config.MessageLimit,
		Remaining: remaining,
		ResetIn:   ttl,
		Limit:     r.config.MessageLimit,
	}, nil
}
