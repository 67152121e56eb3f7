package artifact

import (
	"fmt"
	"math"

	"github.com/mountjawa/peakfinder/schema"
	"gonum.org/v1/gonum/mat"
)

// Supported layer activations.
const (
	LinearActivation  = "linear"
	ReLUActivation    = "relu"
	SigmoidActivation = "sigmoid"
	TanhActivation    = "tanh"
)

// LayerParams is one dense layer. Weights are stored inputs×outputs.
type LayerParams struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// ScorerParams is the on-disk form of the pretrained scorer.
type ScorerParams struct {
	Layers []LayerParams `json:"layers"`
}

type denseLayer struct {
	w   *mat.Dense
	b   []float64
	act func(float64) float64
}

// MLPScorer is a frozen feedforward network with one output.
type MLPScorer struct {
	layers []denseLayer
}

// NewMLPScorer validates layer shapes and builds the network. The first layer
// must take the five catalog features and the last must produce one score.
func NewMLPScorer(p ScorerParams) (*MLPScorer, error) {
	if len(p.Layers) == 0 {
		return nil, fmt.Errorf("scorer has no layers")
	}
	in := schema.FeatureCount
	s := &MLPScorer{layers: make([]denseLayer, 0, len(p.Layers))}
	for li, lp := range p.Layers {
		if len(lp.Weights) != in {
			return nil, fmt.Errorf("layer %d expects %d inputs, weights have %d rows", li, in, len(lp.Weights))
		}
		out := len(lp.Bias)
		if out == 0 {
			return nil, fmt.Errorf("layer %d has no outputs", li)
		}
		data := make([]float64, 0, in*out)
		for r, row := range lp.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("layer %d weight row %d has %d columns, expected %d", li, r, len(row), out)
			}
			data = append(data, row...)
		}
		act, err := activation(lp.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", li, err)
		}
		s.layers = append(s.layers, denseLayer{
			w:   mat.NewDense(in, out, data),
			b:   append([]float64(nil), lp.Bias...),
			act: act,
		})
		in = out
	}
	if in != 1 {
		return nil, fmt.Errorf("scorer produces %d outputs, expected 1", in)
	}
	return s, nil
}

// PredictBatch implements contract.Scorer.
func (s *MLPScorer) PredictBatch(x *mat.Dense) ([]float64, error) {
	rows, cols := x.Dims()
	if cols != schema.FeatureCount {
		return nil, fmt.Errorf("scorer expects %d features, got %d", schema.FeatureCount, cols)
	}

	var cur mat.Matrix = x
	for _, l := range s.layers {
		var next mat.Dense
		next.Mul(cur, l.w)
		next.Apply(func(_, j int, v float64) float64 {
			return l.act(v + l.b[j])
		}, &next)
		cur = &next
	}

	out := make([]float64, rows)
	for i := range rows {
		out[i] = cur.At(i, 0)
	}
	return out, nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case LinearActivation, "":
		return func(v float64) float64 { return v }, nil
	case ReLUActivation:
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case SigmoidActivation:
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	case TanhActivation:
		return math.Tanh, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}
