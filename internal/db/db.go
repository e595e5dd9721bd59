// Package db provides SQLite persistence for the dashboard.
//
// The database lives under .dayplan/ and holds the current state document,
// a bounded history of previous documents for undo, and a log of dispatched
// actions. Use Open() to connect and Init() to create or upgrade the schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// MaxRetries is the maximum number of retries for transient database errors.
const MaxRetries = 5

// RetryBaseDelay is the base delay for exponential backoff.
const RetryBaseDelay = 50 * time.Millisecond

// sqlTime formats a time.Time as a SQLite-compatible UTC string.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// SchemaVersion is the current schema version.
// Increment this when adding new migrations.
const SchemaVersion = 3

// baseSchema is the version 1 schema.
// New tables should be added via migrations, not here.
const baseSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS state_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// migrations defines incremental schema changes.
// Index 0 is migration to version 2, index 1 is migration to version 3, etc.
var migrations = []string{
	// Version 2: action log
	`
CREATE TABLE IF NOT EXISTS action_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	target TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`,
	// Version 3: lookup indexes
	`
CREATE INDEX IF NOT EXISTS idx_state_history_key ON state_history(key, id);
CREATE INDEX IF NOT EXISTS idx_action_log_created ON action_log(created_at);
`,
}

// DB wraps a SQL database connection with dashboard storage operations.
type DB struct {
	*sql.DB
	path   string
	logger zerolog.Logger

	// MaxBackups bounds the number of files kept in the backup directory.
	MaxBackups int
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// ExecRetry executes a statement with retry logic for transient errors.
func (db *DB) ExecRetry(query string, args ...any) (sql.Result, error) {
	return withRetry(func() (sql.Result, error) {
		return db.Exec(query, args...)
	})
}

// QueryRetry executes a query with retry logic for transient errors.
func (db *DB) QueryRetry(query string, args ...any) (*sql.Rows, error) {
	return withRetry(func() (*sql.Rows, error) {
		return db.Query(query, args...)
	})
}

// Open opens or creates the database at the given path.
func Open(path string, logger zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var sqlDB *sql.DB
	var err error

	err = withRetryNoResult(func() error {
		sqlDB, err = sql.Open("sqlite", path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		// busy_timeout first so the remaining PRAGMAs wait on locks
		if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}

		if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DB{
		DB:         sqlDB,
		path:       path,
		logger:     logger.With().Str("component", "db").Logger(),
		MaxBackups: DefaultMaxBackups,
	}, nil
}

// isRetryableError checks if an error is a transient SQLite error that can be retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLITE_BUSY (5), SQLITE_LOCKED (6)
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "SQLITE_LOCKED")
}

// withRetry executes a function with exponential backoff retry on transient errors.
func withRetry[T any](fn func() (T, error)) (T, error) {
	var result T
	var err error
	delay := RetryBaseDelay

	for attempt := 0; attempt < MaxRetries; attempt++ {
		result, err = fn()
		if err == nil || !isRetryableError(err) {
			return result, err
		}

		time.Sleep(delay)
		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}

	return result, fmt.Errorf("failed after %d retries: %w", MaxRetries, err)
}

// withRetryNoResult executes a function with retry that returns only an error.
func withRetryNoResult(fn func() error) error {
	_, err := withRetry(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Init creates the schema and brings it to the current version.
// Safe to call on every startup.
func (db *DB) Init() error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Migrate runs any pending schema migrations.
// A backup is taken first whenever an existing database is upgraded.
func (db *DB) Migrate() error {
	currentVersion, err := db.getSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// A database created from baseSchema alone is version 1.
	if currentVersion == 0 {
		currentVersion = 1
		if err := db.setSchemaVersion(1); err != nil {
			return fmt.Errorf("failed to set base version: %w", err)
		}
	}
	if currentVersion >= SchemaVersion {
		return nil
	}

	// Fresh databases have nothing worth backing up.
	hasData, err := db.hasStoredState()
	if err != nil {
		return fmt.Errorf("failed to check stored state: %w", err)
	}
	if hasData {
		backupPath, err := db.Backup()
		if err != nil {
			return fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
		db.logger.Info().Str("backup", backupPath).Int("from", currentVersion).Int("to", SchemaVersion).Msg("created pre-migration backup")
	}

	for i, migration := range migrations {
		targetVersion := i + 2 // migrations[0] upgrades to v2
		if currentVersion >= targetVersion {
			continue
		}
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration to v%d failed: %w", targetVersion, err)
		}
		if err := db.setSchemaVersion(targetVersion); err != nil {
			return fmt.Errorf("failed to update version to %d: %w", targetVersion, err)
		}
		currentVersion = targetVersion
	}
	return nil
}

// CheckIntegrity runs PRAGMA integrity_check on the database.
func (db *DB) CheckIntegrity() error {
	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database integrity check failed: %s", result)
	}
	return nil
}

// getSchemaVersion returns the current schema version using PRAGMA user_version.
func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}

// setSchemaVersion sets the schema version using PRAGMA user_version.
func (db *DB) setSchemaVersion(version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}

// tableExists checks if a table exists in the database.
func (db *DB) tableExists(name string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		name,
	).Scan(&count)
	return count > 0, err
}

func (db *DB) hasStoredState() (bool, error) {
	exists, err := db.tableExists("kv")
	if err != nil || !exists {
		return false, err
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
