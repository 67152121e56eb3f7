package schema

import "time"

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend      string           `json:"backend"`
	Connected    bool             `json:"connected"`
	TotalRuns    int64            `json:"total_runs"`
	LastRunID    int64            `json:"last_run_id"`
	LastRunTime  time.Time        `json:"last_run_time"`
	OldestRun    time.Time        `json:"oldest_run_time"`
	TotalResults int64            `json:"total_results"`
	TableSizes   map[string]int64 `json:"table_sizes"`
}

// HistoryRunRecord represents a row from the peakfinder_runs table.
type HistoryRunRecord struct {
	RunID               int64
	RunUUID             string
	StartTime           time.Time
	EndTime             *time.Time
	RunDurationMs       *int64
	Strategy            string
	Status              *string
	TotalResults        *int
	Preference          *string
	ConfigParams        *string
	ArtifactFingerprint *string
}

// HistoryResultRecord represents a row from the peakfinder_run_results table.
type HistoryResultRecord struct {
	RunID      int64
	Rank       int
	Name       string
	Province   string
	Difficulty string
	Similarity float64
	ModelScore float64
	FinalScore float64
}
