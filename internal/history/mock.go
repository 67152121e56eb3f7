package history

import (
	"time"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(startTime time.Time, pref schema.Preference, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, pref, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, status schema.RecommendationStatus, totalResults int, fingerprint string) error {
	args := m.Called(runID, endTime, status, totalResults, fingerprint)
	return args.Error(0)
}

// RecordResult implements the HistoryStore interface.
func (m *MockHistoryStore) RecordResult(runID int64, rank int, result schema.ScoredCandidate) error {
	args := m.Called(runID, rank, result)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.HistoryRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.HistoryRunRecord)
	return runs, args.Error(1)
}

// GetAllResults implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllResults() ([]schema.HistoryResultRecord, error) {
	args := m.Called()
	results, _ := args.Get(0).([]schema.HistoryResultRecord)
	return results, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
