package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taxilian/dayplan/internal/db"
	"github.com/taxilian/dayplan/internal/logging"
	"github.com/taxilian/dayplan/internal/state"
)

var (
	flagExportOutput string
	flagExportYAML   bool
	flagLogLimit     int
	flagBackupQuiet  bool
	flagCleanKeep    int
	flagCleanDryRun  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole dashboard as JSON or YAML",
	Long: `Export the dashboard document to stdout or a file.

The JSON form is the same document the database stores and can be read back
with 'dayplan import'.

Examples:
  dayplan export -o backup.json
  dayplan export --yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			data, err := state.Encode(s.state())
			if err != nil {
				return err
			}
			if flagExportYAML {
				if data, err = jsonToYAML(data); err != nil {
					return err
				}
			} else {
				data = append(data, '\n')
			}

			if flagExportOutput == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(flagExportOutput, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", flagExportOutput)
			return nil
		})
	},
}

func jsonToYAML(data []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return json.Marshal(doc)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the dashboard with an exported document",
	Long: `Replace the current dashboard with a JSON or YAML document, such as one
written by 'dayplan export'. Older document shapes (goals instead of projects,
single quick links on tasks) are migrated. Use - to read from stdin.

The replaced dashboard can be brought back with 'dayplan undo'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		ext := strings.ToLower(filepath.Ext(args[0]))
		if ext == ".yaml" || ext == ".yml" {
			if data, err = yamlToJSON(data); err != nil {
				return err
			}
		}

		return withSession(func(s *session) error {
			st, err := s.store.Import(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d projects, %d recurring tasks, %d one-off tasks, %d habits, %d reading items\n",
				len(st.Projects)+len(st.ArchivedProjects), len(st.RecurringTasks), len(st.OneOffTasks), len(st.Habits), len(st.ReadingList))
			return nil
		})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if _, err := s.store.Undo(); err != nil {
				if errors.Is(err, db.ErrNoHistory) {
					return fmt.Errorf("nothing to undo")
				}
				return err
			}
			left, err := s.db.HistoryCount(db.StateKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Undid last change (%d more to undo)\n", left)
			return nil
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			entries, err := s.db.ListActionLog(flagLogLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No changes recorded")
				return nil
			}
			p := s.printer(out)
			for _, e := range entries {
				line := e.Action
				if e.Target != "" {
					line += " " + e.Target
				}
				fmt.Fprintf(out, "%-40s %s\n", line, p.Muted(humanize.Time(e.CreatedAt)))
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the change log",
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Trim the change log to its newest entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			res, err := s.db.CleanupActionLog(db.CleanupOptions{Keep: flagCleanKeep, DryRun: flagCleanDryRun})
			if err != nil {
				return err
			}
			verb := "Deleted"
			if flagCleanDryRun {
				verb = "Would delete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d entries\n", verb, res.DeletedCount, res.TotalBefore)
			return nil
		})
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			path, err := s.db.Backup()
			if err != nil {
				return err
			}
			if !flagBackupQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			}
			return nil
		})
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List database snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			list, err := db.ListBackups(s.db.Path())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No backups")
				return nil
			}
			for _, b := range list {
				fmt.Fprintln(out, b.String())
			}
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Replace the database with a snapshot",
	Long: `Replace the database with a snapshot from 'dayplan backups'. A name without
a directory is looked up in the backups directory. The current database is
backed up first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		dbPath := s.db.Path()
		src := args[0]
		if !strings.ContainsRune(src, filepath.Separator) {
			src = filepath.Join(db.BackupPath(dbPath), src)
		}
		if _, err := os.Stat(src); err != nil {
			_ = s.Close()
			return fmt.Errorf("backup file not found: %w", err)
		}

		safety, err := s.db.Backup()
		if err != nil {
			_ = s.Close()
			return fmt.Errorf("failed to back up current database: %w", err)
		}
		if err := s.Close(); err != nil {
			return err
		}
		if err := db.Restore(dbPath, src); err != nil {
			return err
		}
		if err := checkDatabase(dbPath); err != nil {
			if rerr := db.Restore(dbPath, safety); rerr != nil {
				return fmt.Errorf("%v; putting back the previous database failed: %w", err, rerr)
			}
			return fmt.Errorf("%w; previous database put back", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Restored %s\n", filepath.Base(src))
		fmt.Fprintf(out, "Previous database saved as %s\n", filepath.Base(safety))
		return nil
	},
}

// checkDatabase runs the sqlite integrity check on the database at path.
func checkDatabase(path string) error {
	d, err := db.Open(path, logging.Nop())
	if err != nil {
		return fmt.Errorf("failed to open restored database: %w", err)
	}
	defer d.Close()
	if err := d.CheckIntegrity(); err != nil {
		return fmt.Errorf("restored database is damaged: %w", err)
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&flagExportYAML, "yaml", false, "Export as YAML")
	logCmd.Flags().IntVarP(&flagLogLimit, "limit", "n", 20, "Number of entries (0 for all)")
	historyCleanCmd.Flags().IntVar(&flagCleanKeep, "keep", db.DefaultActionLogKeep, "Entries to keep")
	historyCleanCmd.Flags().BoolVar(&flagCleanDryRun, "dry-run", false, "Report without deleting")
	backupCmd.Flags().BoolVarP(&flagBackupQuiet, "quiet", "q", false, "Print nothing on success")

	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(exportCmd, importCmd, undoCmd, logCmd, historyCmd, backupCmd, backupsCmd, restoreCmd)
}
