package db

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BackupDir is the subdirectory for backups next to the database file.
const BackupDir = "backups"

const backupPrefix = "dayplan-"

// BackupInfo contains information about a backup file.
type BackupInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// String formats the backup for listings, e.g. "dayplan-...db  12 kB  3 minutes ago".
func (b BackupInfo) String() string {
	return fmt.Sprintf("%s  %s  %s", b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.ModTime))
}

// BackupPath returns the backups directory for the database at dbPath.
func BackupPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), BackupDir)
}

// Backup writes a consistent snapshot of the database into the backups
// directory and prunes old snapshots. It returns the snapshot path.
func (db *DB) Backup() (string, error) {
	backupDir := BackupPath(db.path)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Millisecond timestamp plus random suffix keeps names unique.
	timestamp := time.Now().Format("2006-01-02T15-04-05.000")
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	backupFile := filepath.Join(backupDir, fmt.Sprintf("%s%s-%s.db", backupPrefix, timestamp, hex.EncodeToString(randomBytes)))

	quoted := strings.ReplaceAll(backupFile, "'", "''")
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	keep := db.MaxBackups
	if keep <= 0 {
		keep = DefaultMaxBackups
	}
	if err := pruneBackups(backupDir, keep); err != nil {
		db.logger.Warn().Err(err).Msg("failed to prune old backups")
	}

	return backupFile, nil
}

// ListBackups returns the backups of the database at dbPath, newest first.
func ListBackups(dbPath string) ([]BackupInfo, error) {
	return listBackupDir(BackupPath(dbPath))
}

func listBackupDir(backupDir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !isBackupName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(backupDir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".db")
}

// pruneBackups removes old backups, keeping only the newest keep files.
func pruneBackups(backupDir string, keep int) error {
	backups, err := listBackupDir(backupDir)
	if err != nil {
		return err
	}
	for _, b := range backups[min(keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Name, err)
		}
	}
	return nil
}

// Restore replaces the database at dbPath with a backup file.
// The database connection should be closed before calling this.
func Restore(dbPath, backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if err := os.WriteFile(dbPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	// Stale WAL files would be replayed over the restored snapshot.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", dbPath+suffix, err)
		}
	}
	return nil
}
