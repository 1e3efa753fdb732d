// Package store holds the key-value snapshot shared with the foreground app.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koios/api-widget/pkg/models"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// SnapshotStore reads the current snapshot. Absent keys are not an error.
type SnapshotStore interface {
	Read(ctx context.Context) (models.Snapshot, error)
}

// Writer saves values on behalf of the foreground app.
type Writer interface {
	Write(ctx context.Context, values map[string]string) error
}

// ReadWriter is a store that can also be written.
type ReadWriter interface {
	SnapshotStore
	Writer
}

// knownKey reports whether key belongs to the widget schema.
func knownKey(key string) bool {
	switch key {
	case models.KeyTitle, models.KeyBody, models.KeyAccentColor, models.KeyLastUpdated:
		return true
	}
	return false
}

// ValidateValues rejects keys outside the widget schema.
func ValidateValues(values map[string]string) error {
	var unknown []string
	for key := range values {
		if !knownKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown snapshot keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}
