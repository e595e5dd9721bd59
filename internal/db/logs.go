package db

import (
	"fmt"
	"time"
)

// ActionLogEntry records one dispatched action.
type ActionLogEntry struct {
	ID        int64
	Action    string
	Target    string
	CreatedAt time.Time
}

// AddActionLog appends an entry to the action log.
func (db *DB) AddActionLog(action, target string, at time.Time) error {
	_, err := db.ExecRetry(`
		INSERT INTO action_log (action, target, created_at) VALUES (?, ?, ?)`,
		action, target, sqlTime(at))
	if err != nil {
		return fmt.Errorf("failed to add action log: %w", err)
	}
	return nil
}

// ListActionLog returns up to limit entries, newest first. A limit of 0 or
// less returns everything.
func (db *DB) ListActionLog(limit int) ([]ActionLogEntry, error) {
	query := `SELECT id, action, COALESCE(target, ''), created_at FROM action_log ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryRetry(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list action log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []ActionLogEntry
	for rows.Next() {
		var e ActionLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Target, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
