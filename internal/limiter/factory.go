package limiter

import (
	"fmt"
	"strings"

	"github.com/evyataryagoni/voterlocation/internal/logger"
)

// Limiter types
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// LimiterConfig selects and configures a rate limiter
type LimiterConfig struct {
	Type string
	Rate Rate

	// Redis limiter only
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewLimiter builds the limiter named by cfg.Type (memory when empty)
func NewLimiter(cfg LimiterConfig, log *logger.Logger) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case TypeMemory, "":
		return NewMemoryLimiter(cfg.Rate)

	case TypeRedis:
		lim, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Rate, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return lim, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'memory', 'redis')", cfg.Type)
	}
}
