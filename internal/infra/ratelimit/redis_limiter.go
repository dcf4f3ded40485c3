package ratelimit

import (
	"context"
	"time"

	"storehub/internal/domain/service"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "storehub:ratelimit:"

type redisLimiter struct {
	client  *goredis.Client
	maxReqs int
	window  time.Duration
}

// NewRedisLimiter shares attempt counters across processes. It counts in fixed
// windows that start at a key's first attempt.
func NewRedisLimiter(client *goredis.Client, maxAttempts int, window time.Duration) service.RateLimiter {
	return &redisLimiter{client: client, maxReqs: maxAttempts, window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, "failed to record attempt")
	}

	return incr.Val() <= int64(l.maxReqs), nil
}

func (l *redisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "failed to reset attempts")
	}

	return nil
}
