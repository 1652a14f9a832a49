package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "cft:ratelimit:" // cft:ratelimit:{client}:{unix-minute}

// RedisRateLimiter counts requests per client in fixed one-minute windows
// shared by every API replica.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	now    func() time.Time
}

// NewRedisRateLimiter allows perMinute+burst requests per client and minute.
func NewRedisRateLimiter(client *redis.Client, perMinute, burst int) *RedisRateLimiter {
	limit := int64(perMinute + burst)
	if limit <= 0 {
		limit = 1
	}
	return &RedisRateLimiter{client: client, limit: limit, now: time.Now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().Unix() / 60
	rkey := fmt.Sprintf("%s%s:%d", rateKeyPrefix, key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.Expire(ctx, rkey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= l.limit, nil
}
