// Package parquet provides the row types and functions for reading catalogs from
// and exporting recommendations and run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mountjawa/peakfinder/schema"
	"github.com/parquet-go/parquet-go"
)

// CatalogRow is one catalog entry as stored in a Parquet catalog file.
// Column names match the CSV catalog headers.
type CatalogRow struct {
	Name           string   `parquet:"Name"`
	Province       string   `parquet:"Province"`
	ElevationM     float64  `parquet:"elevation_m"`
	DurationHours  float64  `parquet:"hiking_duration_hours"`
	DistanceKM     float64  `parquet:"distance_km"`
	ElevationGainM float64  `parquet:"Elevation_gain"`
	Difficulty     string   `parquet:"difficulty_level"`
	Latitude       *float64 `parquet:"Latitude,optional"`
	Longitude      *float64 `parquet:"Longitude,optional"`
	ImageURL       *string  `parquet:"image_url,optional"`
	RecommendedFor *string  `parquet:"recommended_for,optional"`

	// Precomputed features; all nil means they are derived at load time
	ElevationScaled   *float64 `parquet:"elevation_scaled,optional"`
	DurationScaled    *float64 `parquet:"duration_scaled,optional"`
	DistanceScaled    *float64 `parquet:"distance_scaled,optional"`
	GainScaled        *float64 `parquet:"gain_scaled,optional"`
	DifficultyEncoded *float64 `parquet:"difficulty_encoded,optional"`
}

// RecommendationRow is one ranked result of a recommendation.
type RecommendationRow struct {
	// Rank is the 1-based position in the result list
	Rank int32 `parquet:"rank,snappy"`

	Name       string `parquet:"name,snappy"`
	Province   string `parquet:"province,snappy"`
	Difficulty string `parquet:"difficulty,snappy"`

	ElevationM     float64 `parquet:"elevation_m,snappy"`
	DurationHours  float64 `parquet:"duration_hours,snappy"`
	DistanceKM     float64 `parquet:"distance_km,snappy"`
	ElevationGainM float64 `parquet:"elevation_gain,snappy"`

	Similarity float64 `parquet:"similarity,snappy"`
	ModelScore float64 `parquet:"model_score,snappy"`
	FinalScore float64 `parquet:"final_score,snappy"`
	Label      string  `parquet:"label,snappy"`

	MapsURL        string  `parquet:"maps_url,snappy"`
	ImageURL       string  `parquet:"image_url,snappy"`
	RecommendedFor *string `parquet:"recommended_for,optional,snappy"`
}

// RunRecord represents a single recommendation run with metadata.
// This struct maps to the peakfinder_runs database table.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier for this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	Strategy     string  `parquet:"strategy,snappy"`
	Status       *string `parquet:"status,optional,snappy"`
	TotalResults *int32  `parquet:"total_results,optional,snappy"`

	// Preference and ConfigParams are JSON-encoded (nullable)
	Preference   *string `parquet:"preference,optional,snappy"`
	ConfigParams *string `parquet:"config_params,optional,snappy"`

	ArtifactFingerprint *string `parquet:"artifact_fingerprint,optional,snappy"`
}

// ResultRecord represents one ranked result stored for a run.
// This struct maps to the peakfinder_run_results database table.
type ResultRecord struct {
	RunID      int64   `parquet:"run_id,snappy"`
	Rank       int32   `parquet:"rank,snappy"`
	Name       string  `parquet:"name,snappy"`
	Province   string  `parquet:"province,snappy"`
	Difficulty string  `parquet:"difficulty,snappy"`
	Similarity float64 `parquet:"similarity,snappy"`
	ModelScore float64 `parquet:"model_score,snappy"`
	FinalScore float64 `parquet:"final_score,snappy"`
}

// ConvertRunRecords converts stored runs to Parquet rows.
func ConvertRunRecords(records []schema.HistoryRunRecord) []RunRecord {
	out := make([]RunRecord, len(records))
	for i, r := range records {
		out[i] = RunRecord{
			RunID:               r.RunID,
			RunUUID:             r.RunUUID,
			StartTime:           r.StartTime,
			EndTime:             r.EndTime,
			RunDurationMs:       r.RunDurationMs,
			Strategy:            r.Strategy,
			Status:              r.Status,
			Preference:          r.Preference,
			ConfigParams:        r.ConfigParams,
			ArtifactFingerprint: r.ArtifactFingerprint,
		}
		if r.TotalResults != nil {
			n := int32(*r.TotalResults)
			out[i].TotalResults = &n
		}
	}
	return out
}

// ConvertResultRecords converts stored run results to Parquet rows.
func ConvertResultRecords(records []schema.HistoryResultRecord) []ResultRecord {
	out := make([]ResultRecord, len(records))
	for i, r := range records {
		out[i] = ResultRecord{
			RunID:      r.RunID,
			Rank:       int32(r.Rank),
			Name:       r.Name,
			Province:   r.Province,
			Difficulty: r.Difficulty,
			Similarity: r.Similarity,
			ModelScore: r.ModelScore,
			FinalScore: r.FinalScore,
		}
	}
	return out
}

// WriteRecommendationsParquet writes ranked results to a Parquet file.
func WriteRecommendationsParquet(data []RecommendationRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes run records to a Parquet file.
func WriteRunsParquet(data []RunRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteResultsParquet writes result records to a Parquet file.
func WriteResultsParquet(data []ResultRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCatalogParquet writes catalog rows to a Parquet file.
func WriteCatalogParquet(data []CatalogRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadCatalogParquet reads every catalog row from a Parquet file.
func ReadCatalogParquet(path string) ([]CatalogRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CatalogRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]CatalogRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// writeParquet writes rows to outputPath with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
