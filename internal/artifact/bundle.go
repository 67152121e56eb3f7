// Package artifact loads the fitted scaler, label encoder and pretrained scorer
// that define the catalog feature space.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
)

// Bundle holds the fitted artifacts. It is read-only after loading and safe
// for concurrent use.
type Bundle struct {
	manifest    Manifest
	scaler      contract.Scaler
	encoder     *LabelEncoder
	scorer      contract.Scorer
	fingerprint string
}

var _ contract.Artifacts = &Bundle{}

// Scaler implements contract.Artifacts.
func (b *Bundle) Scaler() contract.Scaler { return b.scaler }

// Encoder implements contract.Artifacts.
func (b *Bundle) Encoder() contract.Encoder { return b.encoder }

// Scorer implements contract.Artifacts. It returns nil when no scorer was loaded.
func (b *Bundle) Scorer() contract.Scorer { return b.scorer }

// Fingerprint identifies the fitted feature transform.
func (b *Bundle) Fingerprint() string { return b.fingerprint }

// Manifest returns the manifest the bundle was loaded from.
func (b *Bundle) Manifest() Manifest { return b.manifest }

// New assembles a bundle from already-built parts. scorer may be nil.
func New(scaler ScalerParams, classes []string, scorer *ScorerParams) (*Bundle, error) {
	s, err := scaler.build()
	if err != nil {
		return nil, fmt.Errorf("%w: scaler: %v", schema.ErrArtifactLoad, err)
	}
	enc, err := NewLabelEncoder(classes)
	if err != nil {
		return nil, fmt.Errorf("%w: encoder: %v", schema.ErrArtifactLoad, err)
	}
	b := &Bundle{
		manifest: Manifest{
			Version:  SupportedVersion,
			Features: featureNames(),
		},
		scaler:      s,
		encoder:     enc,
		fingerprint: fingerprint(scaler, classes),
	}
	if scorer != nil {
		m, err := NewMLPScorer(*scorer)
		if err != nil {
			return nil, fmt.Errorf("%w: scorer: %v", schema.ErrArtifactLoad, err)
		}
		b.scorer = m
	}
	return b, nil
}

// Load reads the bundle in dir. The scorer is only read when needScorer is set;
// a manifest without a scorer entry is then an error.
// Every failure wraps schema.ErrArtifactLoad.
func Load(dir string, needScorer bool) (*Bundle, error) {
	m, err := readManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrArtifactLoad, err)
	}

	var scaler ScalerParams
	if err := readJSON(dir, m.Scaler, &scaler); err != nil {
		return nil, err
	}
	var encoder EncoderParams
	if err := readJSON(dir, m.Encoder, &encoder); err != nil {
		return nil, err
	}

	var scorer *ScorerParams
	if needScorer {
		if m.Scorer == "" {
			return nil, fmt.Errorf("%w: manifest has no scorer entry", schema.ErrArtifactLoad)
		}
		scorer = &ScorerParams{}
		if err := readJSON(dir, m.Scorer, scorer); err != nil {
			return nil, err
		}
	}

	b, err := New(scaler, encoder.Classes, scorer)
	if err != nil {
		return nil, err
	}
	b.manifest = *m
	return b, nil
}

var (
	loadOnce   sync.Once
	loadBundle *Bundle
	loadErr    error
)

// LoadOnce loads the process-wide bundle on first use. Later calls return the
// first result whatever their arguments.
func LoadOnce(dir string, needScorer bool) (*Bundle, error) {
	loadOnce.Do(func() {
		loadBundle, loadErr = Load(dir, needScorer)
	})
	return loadBundle, loadErr
}

func readJSON(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrArtifactLoad, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", schema.ErrArtifactLoad, name, err)
	}
	return nil
}

func fingerprint(scaler ScalerParams, classes []string) string {
	payload, _ := json.Marshal(struct {
		Scaler  ScalerParams `json:"scaler"`
		Classes []string     `json:"classes"`
	}{scaler, classes})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

func featureNames() []string {
	out := make([]string, len(schema.FeatureKeys))
	for i, k := range schema.FeatureKeys {
		out[i] = string(k)
	}
	return out
}
