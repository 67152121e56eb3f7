package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Default file names written by Save.
const (
	ScalerFile  = "scaler.json"
	EncoderFile = "encoder.json"
	ScorerFile  = "scorer.json"
)

// Save writes a bundle directory that Load can read back. scorer may be nil.
func Save(dir string, scaler ScalerParams, classes []string, scorer *ScorerParams) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	m := Manifest{
		Version:  SupportedVersion,
		Features: featureNames(),
		Scaler:   ScalerFile,
		Encoder:  EncoderFile,
	}
	if err := writeJSON(dir, ScalerFile, scaler); err != nil {
		return err
	}
	if err := writeJSON(dir, EncoderFile, EncoderParams{Classes: classes}); err != nil {
		return err
	}
	if scorer != nil {
		m.Scorer = ScorerFile
		if err := writeJSON(dir, ScorerFile, scorer); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
