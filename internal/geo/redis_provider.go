package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evyataryagoni/voterlocation/internal/models"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces location keys: geo:<ip>
const keyPrefix = "geo:"

// RedisProvider stores one JSON-encoded LocationRecord per IP address
type RedisProvider struct {
	client *redis.Client
}

// NewRedisProvider connects to Redis and verifies the connection with PING
func NewRedisProvider(addr, password string, db int) (*RedisProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProvider{client: client}, nil
}

func redisKey(ip string) string {
	return keyPrefix + ip
}

// Lookup implements Provider.
func (p *RedisProvider) Lookup(ctx context.Context, ip string) (*models.LocationRecord, error) {
	val, err := p.client.Get(ctx, redisKey(ip)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	var location models.LocationRecord
	if err := json.Unmarshal(val, &location); err != nil {
		return nil, fmt.Errorf("failed to decode location record: %w", err)
	}

	// IP is not part of the JSON value
	location.IP = ip

	return &location, nil
}

// Set adds or replaces the record for loc.IP (no expiration)
func (p *RedisProvider) Set(ctx context.Context, loc *models.LocationRecord) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location record: %w", err)
	}

	if err := p.client.Set(ctx, redisKey(loc.IP), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// LoadFromCSV copies every record of a CSV file (see NewCSVProvider for the
// format) into Redis in a single pipeline. It returns the number of records written.
func (p *RedisProvider) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	source, err := NewCSVProvider(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	defer source.Close()

	pipe := p.client.Pipeline()
	for ip, loc := range source.data {
		data, err := json.Marshal(loc)
		if err != nil {
			return 0, fmt.Errorf("failed to encode IP %s: %w", ip, err)
		}
		pipe.Set(ctx, redisKey(ip), data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to write records to Redis: %w", err)
	}

	return source.Len(), nil
}

// IsEmpty reports whether no geo:* key exists yet
func (p *RedisProvider) IsEmpty(ctx context.Context) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := p.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check Redis keys: %w", err)
		}
		if len(keys) > 0 {
			return false, nil
		}
		if next == 0 {
			return true, nil
		}
		cursor = next
	}
}

// Name implements Provider.
func (p *RedisProvider) Name() string {
	return TypeRedis
}

// Close closes the Redis connection
func (p *RedisProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
