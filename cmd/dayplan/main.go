package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/db"
	"github.com/taxilian/dayplan/internal/format"
	"github.com/taxilian/dayplan/internal/logging"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/state"
	"github.com/taxilian/dayplan/internal/store"
)

// version is set via ldflags at build time, or read from module info
var version = "dev"

func init() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	rootCmd.Version = version
}

// nowFunc is the clock every command reads.
var nowFunc = time.Now

var (
	flagDate      string
	flagPlain     bool
	flagWeekStart string
)

// session is an open database plus the store loaded from it.
type session struct {
	db     *db.DB
	store  *store.Store
	config *db.Config
	logger zerolog.Logger
	now    time.Time
}

func openSession() (*session, error) {
	env, err := db.LoadEnv()
	if err != nil {
		return nil, err
	}
	dataDir, err := db.ResolveDataDir(env)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dataDir, db.DBFile)
	if env.DB != "" {
		path = env.DB
	}

	config, err := db.LoadConfig(dataDir)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(env)
	logger := logging.New(config.LogLevel, os.Stderr)

	database, err := db.Open(path, logger)
	if err != nil {
		return nil, fmt.Errorf("%w (try running 'dayplan init' first)", err)
	}
	database.MaxBackups = config.MaxBackups
	if err := database.Init(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	now := nowFunc()
	st := store.New(database, logger, store.Options{
		WeekStart:    config.WeekStartDay(),
		HistoryLimit: config.HistoryLimit,
		Now:          func() time.Time { return now },
	})
	if _, err := st.Load(); err != nil {
		_ = database.Close()
		return nil, err
	}
	return &session{db: database, store: st, config: config, logger: logger, now: now}, nil
}

func (s *session) Close() error { return s.db.Close() }

func (s *session) today() string { return dates.Today(s.now) }

// date resolves --date, defaulting to today.
func (s *session) date() (string, error) {
	if flagDate == "" {
		return s.today(), nil
	}
	return dates.Resolve(flagDate, s.now)
}

// resolveDate resolves a date argument relative to the session clock.
func resolveDate(s *session, input string) (string, error) {
	return dates.Resolve(input, s.now)
}

func (s *session) newID(kind model.Kind) string {
	return model.GenerateIDN(kind, s.config.IDLength)
}

func (s *session) state() model.AppState { return s.store.State() }

func (s *session) dispatch(a state.Action) error {
	_, err := s.store.Dispatch(a)
	return err
}

func (s *session) printer(w io.Writer) *format.Printer {
	return format.New(s.state().Theme, flagPlain || !logging.IsTerminal(w))
}

// withSession opens a session for the duration of fn.
func withSession(fn func(s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}

var rootCmd = &cobra.Command{
	Use:     "dayplan",
	Short:   "Personal dashboard for projects, routines and habits",
	Version: version,
	Long: `A command-line personal dashboard: projects with nested tasks scheduled
on days, recurring tasks, one-off tasks, habits with streaks, a reading list,
a calendar and completion statistics.

Database: .dayplan/dayplan.db (nearest .dayplan searching upward, else ~/.dayplan)

Quick start:
  dayplan init
  dayplan project add "Garden"
  dayplan task add pj-abc123 "Plant tomatoes" --date today
  dayplan habit add "Run"
  dayplan today

Dates accept YYYY-MM-DD, today, yesterday, tomorrow, or offsets like +3 and -2.`,
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a dayplan directory here",
	Long:  "Creates .dayplan in the current directory with a config file, a templates directory and the database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := db.InitProject(flagWeekStart)
		if err != nil {
			return err
		}
		database, err := db.Open(path, logging.Nop())
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		if err := database.Init(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized dayplan database at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "Disable colors")
	initCmd.Flags().StringVar(&flagWeekStart, "week-start", "", "First day of the week (sunday or monday)")

	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
