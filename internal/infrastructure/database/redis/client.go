// Package redis provides the Redis-backed infrastructure used by the mint
// coordinator: a thin client constructor and a distributed in-flight
// registry that deduplicates concurrent mint attempts across processes.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

const pingTimeout = 5 * time.Second

// NewClient builds a standalone Redis client from configuration and verifies
// connectivity with a ping before returning it.
func NewClient(cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeCacheError, "redis ping %s failed", cfg.Addr)
	}

	logger.Info("connected to redis",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)
	return client, nil
}
