package cmd

import (
	"fmt"
	"os"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/history"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadHistoryConfig reads the history backend settings without the catalog or artifacts.
func loadHistoryConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseBackend(viper.GetString("history-backend"))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := loadHistoryConfig()
	if err != nil {
		return err
	}

	if err := history.InitHistory(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store or create tables, so migrations run on a fresh database.
func historyMigrateSetup() error {
	backend, connStr, err := loadHistoryConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup. This avoids loading the catalog and artifacts for simple
// history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recommendation run history and exports",
	Long: `Manage the recorded recommendation runs.

When enabled, peakfinder records every recommendation run, storing:
- Run metadata (timestamps, preference, configuration, artifact fingerprint)
- The ranked results with similarity, model and final scores

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs and results to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Record runs in the default SQLite file
  export PEAKFINDER_HISTORY_BACKEND=sqlite
  peakfinder recommend --province Bali

  # Check tracking status
  peakfinder history status

  # Export for analysis in pandas/DuckDB
  peakfinder history export --output-file history`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all stored recommendation runs and their results.

For SQLite the database file is removed. For MySQL and PostgreSQL the
history tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the history backend, whether it is reachable, the number of recorded
runs and results, the newest and oldest run times, and the table sizes.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyManager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs and results to Parquet",
	Long: `Export all stored history to Parquet for analytics tools.

Writes two files next to --output-file:
- <output-file>.runs.parquet    one row per run
- <output-file>.results.parquet one row per ranked result

Requires: --output-file parameter

Examples:
  peakfinder history export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.results.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExportHistory(historyManager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  peakfinder history migrate

  # Migrate to specific version
  peakfinder history migrate --target-version 1

  # Rollback to initial state
  peakfinder history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
