package history

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &HistoryStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for run history.
func GetDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitHistory initializes the global manager with a store for the backend.
// An empty backend leaves the manager without a store.
func InitHistory(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" {
			return
		}
		store, err := NewHistoryStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.store = store
	})

	return initErr
}

// CloseHistory should be called on application shutdown.
func CloseHistory() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.store != nil {
			_ = Manager.store.Close()
		}
	})
}

// ClearHistory removes all recorded runs for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the history tables.
// For NoneBackend, it does nothing.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTables("mysql", connStr, backend)

	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", connStr, backend)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the history tables
// and the migration version table. Results go first since they reference runs.
func clearSQLTables(driverName, connStr string, backend schema.DatabaseBackend) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range []string{runResultsTable, runsTable, migrationsTable} {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
