package models

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
}

func TestLoadManifest_Valid(t *testing.T) {
	dir := t.TempDir()
	writeTestManifest(t, dir, "id: stocks\nname: Stocks\nsummary: test\ndesc: test\nauthor: test\npreviewWidth: 128\npreviewHeight: 64\n")

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "stocks" {
		t.Errorf("ID = %q, want stocks", m.ID)
	}
	if m.PreviewWidth != 128 || m.PreviewHeight != 64 {
		t.Errorf("preview = %dx%d, want 128x64", m.PreviewWidth, m.PreviewHeight)
	}
	// Unset fields keep their defaults
	if m.MinWidth != 250 {
		t.Errorf("MinWidth = %d, want default 250", m.MinWidth)
	}
	if m.SourcePath != filepath.Join(dir, ManifestFileName) {
		t.Errorf("SourcePath = %q", m.SourcePath)
	}
}

func TestLoadManifest_MissingFileUsesDefault(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "api-widget" {
		t.Errorf("ID = %q, want api-widget", m.ID)
	}
	if m.SourcePath != "" {
		t.Errorf("SourcePath = %q, want empty", m.SourcePath)
	}
}

func TestLoadManifest_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestManifest(t, dir, ": : bad yaml [[[")

	if _, err := LoadManifest(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadManifest_Validation(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		dir := t.TempDir()
		writeTestManifest(t, dir, "id: \"\"\nname: x\n")
		if _, err := LoadManifest(dir); err == nil {
			t.Error("expected error for empty id")
		}
	})

	t.Run("zero preview size", func(t *testing.T) {
		dir := t.TempDir()
		writeTestManifest(t, dir, "id: x\npreviewWidth: 0\n")
		if _, err := LoadManifest(dir); err == nil {
			t.Error("expected error for zero preview width")
		}
	})
}
