// Package cache keeps read-side copies of article pages in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"news-hub/config"
)

// Connect opens a client for cfg.Addr and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("cache: redis addr is empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", cfg.Addr, err)
	}
	if pong != "PONG" {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: expected PONG, got %s", pong)
	}
	config.InfoWithFields("redis connected", config.Fields{"addr": cfg.Addr, "db": cfg.DB})
	return rdb, nil
}
