package artifact

import (
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/stretchr/testify/mock"
	"gonum.org/v1/gonum/mat"
)

// MockScorer is a mock implementation of Scorer for testing.
type MockScorer struct {
	mock.Mock
}

var _ contract.Scorer = &MockScorer{} // Compile-time check

// PredictBatch implements the Scorer interface.
func (m *MockScorer) PredictBatch(x *mat.Dense) ([]float64, error) {
	args := m.Called(x)
	scores, _ := args.Get(0).([]float64)
	return scores, args.Error(1)
}

// WithScorer returns artifacts that answer Scorer() with scorer and delegate
// everything else to base.
func WithScorer(base contract.Artifacts, scorer contract.Scorer) contract.Artifacts {
	return scorerOverride{Artifacts: base, scorer: scorer}
}

type scorerOverride struct {
	contract.Artifacts
	scorer contract.Scorer
}

func (s scorerOverride) Scorer() contract.Scorer { return s.scorer }
