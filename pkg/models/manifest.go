package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is looked up inside the manifest directory.
const ManifestFileName = "widget.yaml"

// ProviderManifest describes the widget provider to hosts
type ProviderManifest struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Summary       string `yaml:"summary" json:"summary"`
	Description   string `yaml:"desc" json:"description"`
	Author        string `yaml:"author" json:"author"`
	MinWidth      int    `yaml:"minWidth" json:"minWidth"`
	MinHeight     int    `yaml:"minHeight" json:"minHeight"`
	PreviewWidth  int    `yaml:"previewWidth" json:"previewWidth"`
	PreviewHeight int    `yaml:"previewHeight" json:"previewHeight"`

	// Runtime fields (not in manifest)
	SourcePath string `yaml:"-" json:"sourcePath,omitempty"`
}

// DefaultManifest is used when no widget.yaml is present.
func DefaultManifest() *ProviderManifest {
	return &ProviderManifest{
		ID:            "api-widget",
		Name:          "API Widget",
		Summary:       "Shows the latest data fetched by the app",
		MinWidth:      250,
		MinHeight:     110,
		PreviewWidth:  64,
		PreviewHeight: 32,
	}
}

// LoadManifest loads widget.yaml from dir. A missing file yields the
// default manifest.
func LoadManifest(dir string) (*ProviderManifest, error) {
	manifestPath := filepath.Join(dir, ManifestFileName)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	manifest := DefaultManifest()
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest file: %w", err)
	}

	if manifest.ID == "" {
		return nil, fmt.Errorf("manifest %s: id is required", manifestPath)
	}
	if manifest.PreviewWidth <= 0 || manifest.PreviewHeight <= 0 {
		return nil, fmt.Errorf("manifest %s: preview dimensions must be positive", manifestPath)
	}

	manifest.SourcePath = manifestPath
	return manifest, nil
}
