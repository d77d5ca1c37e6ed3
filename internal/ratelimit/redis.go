package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisWindowTTL keeps a window key slightly past its second.
const redisWindowTTL = 2 * time.Second

// RedisLimiter shares one-second windows across instances. Each check runs
// INCR and EXPIRE in a single MULTI/EXEC transaction.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter writing keys under prefix.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow counts a request for key in the window containing now.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	second := now.Unix()
	windowKey := l.prefix + ":" + key + ":" + strconv.FormatInt(second, 10)

	var incr *redis.IntCmd
	_, errExec := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, windowKey)
		pipe.Expire(ctx, windowKey, redisWindowTTL)
		return nil
	})
	if errExec != nil {
		return Result{}, fmt.Errorf("rate limit redis: %w", errExec)
	}
	return windowResult(int(incr.Val()), limit, time.Unix(second+1, 0).UTC()), nil
}
