package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/koios/api-widget/pkg/models"
)

// RedisStore reads the snapshot from a single Redis hash.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a store over the hash at key.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Read(ctx context.Context) (models.Snapshot, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read hash %s from Redis: %w", s.key, err)
	}
	return models.SnapshotFromValues(values), nil
}

func (s *RedisStore) Write(ctx context.Context, values map[string]string) error {
	if err := ValidateValues(values); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, s.key, values).Err(); err != nil {
		return fmt.Errorf("failed to write hash %s to Redis: %w", s.key, err)
	}
	return nil
}

// Clear removes the hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
