package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/koios/api-widget/internal/config"
)

// Open builds the store selected by cfg. rdb is only used by the redis backend.
func Open(cfg config.StoreConfig, rdb redis.UniversalClient, redisKey string) (ReadWriter, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(nil), nil
	case "disk":
		if cfg.DiskPath == "" {
			return nil, fmt.Errorf("disk store requires a path")
		}
		return NewDiskStore(cfg.DiskPath), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis store requires a Redis client")
		}
		return NewRedisStore(rdb, redisKey), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
