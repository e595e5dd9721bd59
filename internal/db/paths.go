package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

const (
	// DataDir is the data directory name.
	DataDir = ".dayplan"
	// DBFile is the database filename inside DataDir.
	DBFile = "dayplan.db"
	// ConfigFile is the config filename inside DataDir.
	ConfigFile = "config.toml"
	// TemplatesDir is the template directory inside DataDir.
	TemplatesDir = "templates"
)

// Env holds environment overrides, read from DAYPLAN_HOME, DAYPLAN_DB and
// DAYPLAN_LOG_LEVEL.
type Env struct {
	Home     string
	DB       string
	LogLevel string `split_words:"true"`
}

// LoadEnv reads the DAYPLAN_* environment variables.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("dayplan", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// dataDirFromCwd returns the data directory path in the current working directory.
func dataDirFromCwd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, DataDir), nil
}

// findDataDir searches upward from the current working directory to locate
// DataDir. found is false when no ancestor has one.
func findDataDir() (dir string, found bool, err error) {
	startDir, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("failed to get working directory: %w", err)
	}

	dir = startDir
	for {
		candidate := filepath.Join(dir, DataDir)
		info, err := os.Stat(candidate)
		if err == nil {
			if !info.IsDir() {
				return "", false, fmt.Errorf("%s exists but is not a directory", candidate)
			}
			return candidate, true, nil
		}
		if !os.IsNotExist(err) {
			return "", false, fmt.Errorf("failed to check %s: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// ResolveDataDir picks the data directory: DAYPLAN_HOME when set, else the
// nearest .dayplan found searching upward, else ~/.dayplan.
func ResolveDataDir(env Env) (string, error) {
	if env.Home != "" {
		return env.Home, nil
	}
	dir, found, err := findDataDir()
	if err != nil {
		return "", err
	}
	if found {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no %s directory found and no home directory: %w", DataDir, err)
	}
	return filepath.Join(home, DataDir), nil
}

// DefaultPath returns the database path, honoring DAYPLAN_DB.
func DefaultPath(env Env) (string, error) {
	if env.DB != "" {
		return env.DB, nil
	}
	dataDir, err := ResolveDataDir(env)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DBFile), nil
}

// InitPath returns the database path for initializing the current directory.
func InitPath() (string, error) {
	dataDir, err := dataDirFromCwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DBFile), nil
}
