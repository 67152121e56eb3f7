package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mountjawa/peakfinder/schema"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the bundle manifest inside the artifact directory.
const ManifestFile = "manifest.yaml"

// SupportedVersion is the only manifest version this build understands.
const SupportedVersion = 1

// Manifest describes the files of an artifact bundle.
type Manifest struct {
	Version  int      `yaml:"version"`
	Features []string `yaml:"features"`
	Scaler   string   `yaml:"scaler"`
	Encoder  string   `yaml:"encoder"`
	Scorer   string   `yaml:"scorer,omitempty"`
	Trained  string   `yaml:"trained,omitempty"` // Free-form training note, e.g. a date
}

// readManifest parses and checks the manifest in dir.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if m.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	if len(m.Features) != schema.FeatureCount {
		return nil, fmt.Errorf("manifest lists %d features, expected %d", len(m.Features), schema.FeatureCount)
	}
	for i, f := range m.Features {
		if schema.FeatureKey(f) != schema.FeatureKeys[i] {
			return nil, fmt.Errorf("feature %d is %q, expected %q", i, f, schema.FeatureKeys[i])
		}
	}
	if m.Scaler == "" || m.Encoder == "" {
		return nil, fmt.Errorf("manifest must name both scaler and encoder files")
	}
	return &m, nil
}
