package history

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mountjawa/peakfinder/schema"
)

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// rebind rewrites ? placeholders as $1..$N for PostgreSQL.
func rebind(query string, backend schema.DatabaseBackend) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a single timestamp column stored by formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}
