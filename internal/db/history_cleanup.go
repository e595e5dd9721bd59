package db

import "fmt"

// DefaultActionLogKeep is the number of action log entries kept by cleanup.
const DefaultActionLogKeep = 1000

// CleanupOptions configures action log cleanup.
type CleanupOptions struct {
	Keep   int  // newest entries to keep; 0 means DefaultActionLogKeep
	DryRun bool // count but don't delete
}

// CleanupResult reports what cleanup removed.
type CleanupResult struct {
	TotalBefore  int
	DeletedCount int // deleted, or would be deleted in dry run
}

// CleanupActionLog trims the action log to the newest opts.Keep entries.
func (db *DB) CleanupActionLog(opts CleanupOptions) (CleanupResult, error) {
	var result CleanupResult
	keep := opts.Keep
	if keep <= 0 {
		keep = DefaultActionLogKeep
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM action_log").Scan(&result.TotalBefore); err != nil {
		return result, fmt.Errorf("failed to count action log: %w", err)
	}
	if result.TotalBefore > keep {
		result.DeletedCount = result.TotalBefore - keep
	}
	if opts.DryRun || result.DeletedCount == 0 {
		return result, nil
	}

	_, err := db.ExecRetry(`
		DELETE FROM action_log WHERE id NOT IN (
			SELECT id FROM action_log ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return result, fmt.Errorf("failed to trim action log: %w", err)
	}
	return result, nil
}
