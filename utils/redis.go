// File: utils/redis.go
package utils

import (
	"context"
	"fmt"
	"time"

	"bookinghub/config"

	"github.com/go-redis/redis/v8"
)

// NewLockStoreClient connects the Redis client used for slot locks. Retries
// are bounded at the transport level: go-redis backs off between attempts,
// growing from the minimum delay up to the configured cap.
func NewLockStoreClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("lock store address is not configured")
	}

	maxRetries := cfg.LockStoreMaxRetries
	if maxRetries == 0 {
		// go-redis treats 0 as "use the default"; -1 disables retries.
		maxRetries = -1
	}

	client := redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr,
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisLockDB,
		MaxRetries:      maxRetries,
		MinRetryBackoff: time.Duration(cfg.LockStoreMinBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.LockStoreMaxBackoffMS) * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (lock store): %w", err)
	}
	return client, nil
}
