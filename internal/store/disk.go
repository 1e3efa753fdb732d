package store

import (
	"context"
	"fmt"

	"github.com/peterbourgon/diskv/v3"

	"github.com/koios/api-widget/pkg/models"
)

var snapshotKeys = []string{
	models.KeyTitle,
	models.KeyBody,
	models.KeyAccentColor,
	models.KeyLastUpdated,
}

// DiskStore keeps one file per key under a base directory.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore opens (or creates on first write) a store rooted at basePath.
func NewDiskStore(basePath string) *DiskStore {
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 64 * 1024,
	})}
}

func (s *DiskStore) Read(ctx context.Context) (models.Snapshot, error) {
	values := make(map[string]string, len(snapshotKeys))
	for _, key := range snapshotKeys {
		if err := ctx.Err(); err != nil {
			return models.Snapshot{}, err
		}
		if !s.d.Has(key) {
			continue
		}
		val, err := s.d.Read(key)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to read key %s: %w", key, err)
		}
		values[key] = string(val)
	}
	return models.SnapshotFromValues(values), nil
}

// Write stores each key in its own file. It is not atomic: a failure
// partway through leaves the keys written so far in place.
func (s *DiskStore) Write(ctx context.Context, values map[string]string) error {
	if err := ValidateValues(values); err != nil {
		return err
	}
	for key, val := range values {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.d.Write(key, []byte(val)); err != nil {
			return fmt.Errorf("failed to write key %s: %w", key, err)
		}
	}
	return nil
}
