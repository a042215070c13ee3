package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/voterlocation/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "ratelimit:"
	redisTimeout   = 100 * time.Millisecond
)

// fixedWindowScript counts a request in the current window and returns the
// count. The key expires two windows later.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window limiter shared by every instance that
// talks to the same Redis.
type RedisLimiter struct {
	client *redis.Client
	rate   Rate
	log    *logger.Logger
	now    func() time.Time
}

// NewRedisLimiter connects to Redis and creates a limiter for rate
func NewRedisLimiter(addr, password string, db int, rate Rate, log *logger.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return NewRedisLimiterWithClient(client, rate, log)
}

// NewRedisLimiterWithClient wraps an existing client. The limiter owns the
// client and closes it on Close.
func NewRedisLimiterWithClient(client *redis.Client, rate Rate, log *logger.Logger) (*RedisLimiter, error) {
	if err := rate.validate(); err != nil {
		return nil, err
	}
	if rate.Window < time.Second {
		return nil, fmt.Errorf("redis rate window must be at least 1s, got %s", rate.Window)
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &RedisLimiter{
		client: client,
		rate:   rate,
		log:    log.WithComponent("redis_limiter"),
		now:    time.Now,
	}, nil
}

// Allow counts the request in the client's current window.
// Redis failures fail open so an outage does not take the API down.
func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	windowSecs := int64(l.rate.Window / time.Second)
	window := l.now().Unix() / windowSecs
	redisKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, window)

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowSecs*2).Int64()
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("Rate limit check failed, allowing request")
		return true
	}

	return count <= int64(l.rate.Limit)
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
