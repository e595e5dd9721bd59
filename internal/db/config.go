package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
)

// Config defaults.
const (
	DefaultWeekStart  = "sunday"
	DefaultColor      = "#6366f1"
	DefaultLogLevel   = "warn"
	DefaultMaxBackups = 10
)

// Config holds settings stored in .dayplan/config.toml.
type Config struct {
	WeekStart    string `toml:"week_start" validate:"omitempty,oneof=sunday monday"`
	IDLength     int    `toml:"id_length" validate:"min=0,max=32"`
	MaxBackups   int    `toml:"max_backups" validate:"min=0"`
	HistoryLimit int    `toml:"history_limit" validate:"min=0"`
	DefaultColor string `toml:"default_color" validate:"omitempty,hexcolor"`
	LogLevel     string `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

var configValidator = validator.New()

// WeekStartDay returns the configured first day of the week.
func (c *Config) WeekStartDay() time.Weekday {
	wd, err := dates.ParseWeekStart(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// ApplyEnv overrides config values with environment settings.
func (c *Config) ApplyEnv(env Env) {
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
}

func applyDefaults(config *Config) {
	if config.WeekStart == "" {
		config.WeekStart = DefaultWeekStart
	}
	if config.IDLength == 0 {
		config.IDLength = model.DefaultIDLength
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = DefaultMaxBackups
	}
	if config.HistoryLimit == 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}
	if config.DefaultColor == "" {
		config.DefaultColor = DefaultColor
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

// LoadConfig reads dataDir/config.toml. If no config exists, defaults are
// returned.
func LoadConfig(dataDir string) (*Config, error) {
	configPath := filepath.Join(dataDir, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	if err := configValidator.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	applyDefaults(&config)
	return &config, nil
}

// SaveConfig writes config to dataDir/config.toml.
func SaveConfig(dataDir string, config *Config) error {
	applyDefaults(config)
	if err := configValidator.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	configPath := filepath.Join(dataDir, ConfigFile)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// InitProject creates the .dayplan directory in the current directory with
// a default config, keeping any config already there. It returns the
// database path.
func InitProject(weekStart string) (string, error) {
	dbPath, err := InitPath()
	if err != nil {
		return "", err
	}
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(filepath.Join(dataDir, TemplatesDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", DataDir, err)
	}

	config, err := LoadConfig(dataDir)
	if err != nil {
		return "", err
	}
	if weekStart != "" {
		wd, err := dates.ParseWeekStart(weekStart)
		if err != nil {
			return "", err
		}
		config.WeekStart = DefaultWeekStart
		if wd == time.Monday {
			config.WeekStart = "monday"
		}
	}
	if err := SaveConfig(dataDir, config); err != nil {
		return "", err
	}
	return dbPath, nil
}
