// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/mountjawa/peakfinder/schema"
	"gonum.org/v1/gonum/mat"
)

// Scaler is a fitted linear transform over the four continuous preference fields.
// Parameters are fitted offline and never re-fitted per request.
type Scaler interface {
	Transform(raw [4]float64) [4]float64
}

// Encoder is a fitted label encoding with a fixed vocabulary.
type Encoder interface {
	// Transform returns the integer code for label, or an error wrapping
	// schema.ErrUnknownCategory when label is outside the vocabulary.
	Transform(label string) (int, error)

	// Classes returns the vocabulary in code order.
	Classes() []string
}

// Scorer is a pretrained, frozen model that scores feature rows in one batch.
type Scorer interface {
	// PredictBatch consumes an N×5 feature matrix and returns N scores.
	PredictBatch(x *mat.Dense) ([]float64, error)
}

// Artifacts groups the fitted transforms and the scorer loaded at startup.
// Scorer returns nil when the process runs without a learned scorer.
type Artifacts interface {
	Scaler() Scaler
	Encoder() Encoder
	Scorer() Scorer
	Fingerprint() string
}

// HistoryManager defines the interface for reaching the run history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking recommendation runs and their results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, pref schema.Preference, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, status schema.RecommendationStatus, totalResults int, fingerprint string) error

	// RecordResult stores one ranked result of a run.
	RecordResult(runID int64, rank int, result schema.ScoredCandidate) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run ordered by ID.
	GetAllRuns() ([]schema.HistoryRunRecord, error)

	// GetAllResults returns every stored result ordered by run and rank.
	GetAllResults() ([]schema.HistoryResultRecord, error)

	// Close closes the underlying connection.
	Close() error
}
