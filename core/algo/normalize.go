// Package algo has the pure scoring algorithms of the recommendation pipeline.
package algo

import (
	"fmt"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
)

// Normalize maps a preference into the catalog feature space using the same
// fitted scaler and encoder that produced the catalog features.
//
// An unknown difficulty fails with schema.ErrUnknownCategory and a zero vector.
func Normalize(pref schema.Preference, scaler contract.Scaler, encoder contract.Encoder) (schema.Vector, error) {
	code, err := encoder.Transform(pref.Difficulty)
	if err != nil {
		return schema.Vector{}, fmt.Errorf("normalize difficulty %q: %w", pref.Difficulty, err)
	}

	scaled := scaler.Transform(pref.Continuous())

	var v schema.Vector
	copy(v[:4], scaled[:])
	v[4] = float64(code)
	return v, nil
}
