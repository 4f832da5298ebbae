package database

import (
	"fmt"
	"time"

	"financial-import-platform/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates the Redis client that backs the mapping configuration
// cache. Configuration reads are bursty (one lookup per incoming file), so the
// pool is sized from config rather than left at the driver default.
func NewRedisClient(cfg *config.Config) *redis.Client {
	poolSize := cfg.Redis.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	minIdle := cfg.Redis.MinIdleConns
	if minIdle < 0 {
		minIdle = 0
	}

	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
		MaxRetries:   3,
	})
}
