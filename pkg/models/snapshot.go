package models

import (
	"strconv"
	"strings"
)

// Keys shared with the foreground application's key-value store.
const (
	KeyTitle       = "widget_title"
	KeyBody        = "widget_data"
	KeyAccentColor = "widget_color"
	KeyLastUpdated = "last_updated"
)

// Snapshot is the last-known widget state read from the shared store.
// A nil field means the key was absent.
type Snapshot struct {
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
	AccentColor *string `json:"accent_color,omitempty"`
	LastUpdated *int64  `json:"last_updated,omitempty"` // epoch millis
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// SnapshotFromValues decodes raw store values. An unparseable
// last_updated is treated as absent.
func SnapshotFromValues(values map[string]string) Snapshot {
	var s Snapshot
	if v, ok := values[KeyTitle]; ok {
		s.Title = Ptr(v)
	}
	if v, ok := values[KeyBody]; ok {
		s.Body = Ptr(v)
	}
	if v, ok := values[KeyAccentColor]; ok {
		s.AccentColor = Ptr(v)
	}
	if v, ok := values[KeyLastUpdated]; ok {
		if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			s.LastUpdated = Ptr(ms)
		}
	}
	return s
}

// Values encodes the present fields back into store values.
func (s Snapshot) Values() map[string]string {
	values := make(map[string]string, 4)
	if s.Title != nil {
		values[KeyTitle] = *s.Title
	}
	if s.Body != nil {
		values[KeyBody] = *s.Body
	}
	if s.AccentColor != nil {
		values[KeyAccentColor] = *s.AccentColor
	}
	if s.LastUpdated != nil {
		values[KeyLastUpdated] = strconv.FormatInt(*s.LastUpdated, 10)
	}
	return values
}
