package storage

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Open builds the store selected by cfg.Storage.Backend. The returned close
// function releases the backend's connections and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on exit")
		return NewMemoryStore(), noop, nil

	case config.StorageFile:
		s, err := NewFileStore(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("dir", cfg.Storage.Dir).Msg("using file storage")
		return s, noop, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Str("prefix", cfg.Redis.Prefix).Msg("using redis storage")
		return NewRedisStore(client, cfg.Redis.Prefix, logger), func() { client.Close() }, nil

	case config.StoragePostgres:
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return nil, noop, fmt.Errorf("failed to migrate state database: %w", err)
		}
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewPostgresStore(pool, logger), pool.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
