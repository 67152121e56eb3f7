package history

import (
	"errors"
	"fmt"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/parquet"
)

// ExportHistory writes every stored run and result to two Parquet files
// named after outputFile.
func ExportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total result records: %d\n", status.TotalResults)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := store.GetAllResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve run results: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetResults := parquet.ConvertResultRecords(results)
	resultsFile := outputFile + ".results.parquet"
	if err := parquet.WriteResultsParquet(parquetResults, resultsFile); err != nil {
		return fmt.Errorf("failed to write run results: %w", err)
	}
	fmt.Printf("Exported %d run results to: %s\n", len(parquetResults), resultsFile)

	return nil
}
