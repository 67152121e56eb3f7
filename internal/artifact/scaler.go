package artifact

import (
	"fmt"
	"math"

	"github.com/mountjawa/peakfinder/internal/contract"
)

// Scaler kinds.
const (
	MinMaxKind   = "minmax"
	StandardKind = "standard"
)

// ScalerParams is the on-disk form of a fitted scaler.
type ScalerParams struct {
	Kind  string    `json:"kind"`
	Min   []float64 `json:"min,omitempty"`
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale"`
}

// MinMaxScaler maps x to x*scale + min, matching a fitted min-max scaler.
type MinMaxScaler struct {
	min, scale [4]float64
}

// Transform implements contract.Scaler.
func (s *MinMaxScaler) Transform(raw [4]float64) [4]float64 {
	var out [4]float64
	for i := range raw {
		out[i] = raw[i]*s.scale[i] + s.min[i]
	}
	return out
}

// StandardScaler maps x to (x - mean) / scale.
type StandardScaler struct {
	mean, scale [4]float64
}

// Transform implements contract.Scaler.
func (s *StandardScaler) Transform(raw [4]float64) [4]float64 {
	var out [4]float64
	for i := range raw {
		out[i] = (raw[i] - s.mean[i]) / s.scale[i]
	}
	return out
}

// NewMinMaxScaler builds a min-max scaler from fitted parameters.
func NewMinMaxScaler(mins, scale []float64) (*MinMaxScaler, error) {
	s := &MinMaxScaler{}
	if err := fill4("min", mins, &s.min); err != nil {
		return nil, err
	}
	if err := fill4("scale", scale, &s.scale); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStandardScaler builds a standard scaler from fitted parameters.
// Every scale must be non-zero.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{}
	if err := fill4("mean", mean, &s.mean); err != nil {
		return nil, err
	}
	if err := fill4("scale", scale, &s.scale); err != nil {
		return nil, err
	}
	for i, v := range s.scale {
		if v == 0 {
			return nil, fmt.Errorf("scale[%d] is zero", i)
		}
	}
	return s, nil
}

func (p ScalerParams) build() (contract.Scaler, error) {
	switch p.Kind {
	case MinMaxKind:
		s, err := NewMinMaxScaler(p.Min, p.Scale)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StandardKind:
		s, err := NewStandardScaler(p.Mean, p.Scale)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown scaler kind %q", p.Kind)
	}
}

func fill4(name string, src []float64, dst *[4]float64) error {
	if len(src) != 4 {
		return fmt.Errorf("%s has %d values, expected 4", name, len(src))
	}
	for i, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not finite", name, i)
		}
		dst[i] = v
	}
	return nil
}
