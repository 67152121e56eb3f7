package algo

import (
	"fmt"
	"sort"

	"github.com/mountjawa/peakfinder/schema"
	"gonum.org/v1/gonum/mat"
)

// linearScaler is a min-max scaler of the form x*scale + min.
type linearScaler struct {
	min, scale [4]float64
}

func (s linearScaler) Transform(raw [4]float64) [4]float64 {
	var out [4]float64
	for i := range raw {
		out[i] = raw[i]*s.scale[i] + s.min[i]
	}
	return out
}

// fitMinMax fits a linearScaler on the given rows.
func fitMinMax(rows ...[4]float64) linearScaler {
	var s linearScaler
	for i := range 4 {
		lo, hi := rows[0][i], rows[0][i]
		for _, r := range rows[1:] {
			lo = min(lo, r[i])
			hi = max(hi, r[i])
		}
		s.scale[i] = 1 / (hi - lo)
		s.min[i] = -lo * s.scale[i]
	}
	return s
}

// sortedEncoder encodes labels by their index in the sorted vocabulary.
type sortedEncoder struct {
	classes []string
}

func newSortedEncoder(labels ...string) sortedEncoder {
	seen := map[string]struct{}{}
	var classes []string
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return sortedEncoder{classes: classes}
}

func (e sortedEncoder) Transform(label string) (int, error) {
	for i, c := range e.classes {
		if c == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", schema.ErrUnknownCategory, label)
}

func (e sortedEncoder) Classes() []string { return e.classes }

// funcScorer scores each row with fn and counts batch calls.
type funcScorer struct {
	fn    func(row []float64) float64
	calls int
	rows  []int
}

func (s *funcScorer) PredictBatch(x *mat.Dense) ([]float64, error) {
	s.calls++
	r, _ := x.Dims()
	s.rows = append(s.rows, r)
	out := make([]float64, r)
	for i := range r {
		out[i] = s.fn(x.RawRowView(i))
	}
	return out, nil
}

// fixedScorer returns a canned response.
type fixedScorer struct {
	scores []float64
	err    error
}

func (s fixedScorer) PredictBatch(*mat.Dense) ([]float64, error) {
	return s.scores, s.err
}
