package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database and makes sure the schema exists.
// The sqlite driver keeps the offline replica on local disk; postgres is used
// when progress is shared with a backend.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func initializeSchema(db *sqlx.DB) error {
	blobType, realType := "BLOB", "REAL"
	if db.DriverName() == DriverPostgres {
		blobType, realType = "BYTEA", "DOUBLE PRECISION"
	}

	stmts := []struct {
		table string
		ddl   string
	}{
		{"learning_records", `
			CREATE TABLE IF NOT EXISTS learning_records (
				user_id TEXT NOT NULL,
				item_id TEXT NOT NULL,
				practice_count INTEGER NOT NULL DEFAULT 0,
				accuracy_score ` + realType + ` NOT NULL DEFAULT 0,
				last_practiced_at TIMESTAMP,
				PRIMARY KEY (user_id, item_id)
			)`},
		{"activity_log", `
			CREATE TABLE IF NOT EXISTS activity_log (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				item_id TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`},
		{"activity_log index", `
			CREATE INDEX IF NOT EXISTS idx_activity_log_user ON activity_log (user_id, created_at)`},
		{"content_cache", `
			CREATE TABLE IF NOT EXISTS content_cache (
				cache_key TEXT PRIMARY KEY,
				payload ` + blobType + ` NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
	}

	for _, s := range stmts {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
	}
	return nil
}
