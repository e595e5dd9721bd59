package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateKey is the kv key holding the dashboard document.
const StateKey = "dashboard-state"

// DefaultHistoryLimit is the number of undo snapshots kept when no limit is
// configured.
const DefaultHistoryLimit = 50

var (
	// ErrNoState is returned when nothing has been saved yet.
	ErrNoState = errors.New("no saved state")
	// ErrNoHistory is returned when there is nothing to undo.
	ErrNoHistory = errors.New("nothing to undo")
)

// LoadState returns the stored document for key.
func (db *DB) LoadState(key string) ([]byte, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return []byte(value), nil
}

// SaveState stores value under key. The document it replaces is pushed onto
// the undo history, which is then pruned to historyLimit entries. A
// historyLimit of 0 or less uses DefaultHistoryLimit.
func (db *DB) SaveState(key string, value []byte, historyLimit int) error {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return withRetryNoResult(func() error {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var previous string
		err = tx.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&previous)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read current state: %w", err)
		case previous == string(value):
			// Unchanged; no snapshot needed.
		default:
			if _, err := tx.Exec(`INSERT INTO state_history (key, value, created_at) VALUES (?, ?, ?)`,
				key, previous, sqlTime(time.Now())); err != nil {
				return fmt.Errorf("failed to record history: %w", err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), sqlTime(time.Now())); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}

		if _, err := tx.Exec(`
			DELETE FROM state_history WHERE key = ? AND id NOT IN (
				SELECT id FROM state_history WHERE key = ? ORDER BY id DESC LIMIT ?
			)`, key, key, historyLimit); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit state: %w", err)
		}
		return nil
	})
}

// ReplaceState stores value under key without recording history.
func (db *DB) ReplaceState(key string, value []byte) error {
	_, err := db.ExecRetry(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), sqlTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

// Undo restores the newest history snapshot for key as the current document
// and removes it from the history. It returns the restored document.
func (db *DB) Undo(key string) ([]byte, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	var value string
	err = tx.QueryRow(`SELECT id, value FROM state_history WHERE key = ? ORDER BY id DESC LIMIT 1`, key).Scan(&id, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, sqlTime(time.Now())); err != nil {
		return nil, fmt.Errorf("failed to restore state: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM state_history WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to drop history entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit undo: %w", err)
	}
	return []byte(value), nil
}

// HistoryCount returns the number of undo snapshots stored for key.
func (db *DB) HistoryCount(key string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM state_history WHERE key = ?`, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}
