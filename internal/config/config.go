// Package config provides configuration types and defaults for coffer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/gfbarbieri/coffer/internal/workflow"
)

// Config holds all configuration options for coffer.
type Config struct {
	// DBPath is the SQLite database file used for session snapshots.
	// Empty means the default under the user config directory.
	DBPath string `mapstructure:"db_path"`

	// Persist controls whether sessions are snapshotted to the database.
	Persist bool `mapstructure:"persist"`

	// LogFile receives structured logs; the terminal belongs to the UI.
	LogFile string `mapstructure:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Trace enables span export to stdout-adjacent trace output.
	Trace bool `mapstructure:"trace"`

	Defaults DefaultsConfig `mapstructure:"defaults"`
	Import   ImportConfig   `mapstructure:"import"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DefaultsConfig seeds a new session's strategy selections. Values are
// strategy names as understood by the workflow registries; empty means
// no preselection.
type DefaultsConfig struct {
	AllocationStrategy   string `mapstructure:"allocation_strategy"`
	ProportionalMethod   string `mapstructure:"proportional_method"`
	SchedulerStrategy    string `mapstructure:"scheduler_strategy"`
	ContributionInterval int    `mapstructure:"contribution_interval"`
}

// ImportConfig controls bulk bill ingestion.
type ImportConfig struct {
	// WatchDir, when set, is watched for new bill source files which are
	// offered for import automatically.
	WatchDir string `mapstructure:"watch_dir"`
	// WatchDebounce coalesces rapid file events into one import prompt.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	// CurrencySymbol prefixes rendered amounts.
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Persist:  true,
		LogLevel: "info",
		Defaults: DefaultsConfig{
			ContributionInterval: workflow.DefaultContributionInterval,
		},
		Import: ImportConfig{
			WatchDebounce: 1 * time.Second,
		},
		UI: UIConfig{
			ShowStatusBar:  true,
			CurrencySymbol: "$",
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Defaults.AllocationStrategy != "" {
		if _, err := workflow.ParseAllocationStrategy(c.Defaults.AllocationStrategy); err != nil {
			return fmt.Errorf("defaults.allocation_strategy: %w", err)
		}
	}
	if c.Defaults.ProportionalMethod != "" {
		if _, err := workflow.ParseProportionalMethod(c.Defaults.ProportionalMethod); err != nil {
			return fmt.Errorf("defaults.proportional_method: %w", err)
		}
	}
	if c.Defaults.SchedulerStrategy != "" {
		if _, err := workflow.ParseSchedulerStrategy(c.Defaults.SchedulerStrategy); err != nil {
			return fmt.Errorf("defaults.scheduler_strategy: %w", err)
		}
	}
	if c.Defaults.ContributionInterval < 1 {
		return fmt.Errorf("defaults.contribution_interval: must be a positive number of days")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

// DefaultDBPath returns the default session database location.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "coffer", "coffer.db"), nil
}

// Load reads configuration from the given file (or the default search
// path when empty), layered over Defaults. A missing config file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "coffer"))
		}
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("COFFER")
	v.AutomaticEnv()

	cfg := Defaults()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Coffer Configuration

# Session snapshot database (default: <user config dir>/coffer/coffer.db)
# db_path: /path/to/coffer.db

# Snapshot the session to the database after each change
persist: true

# Structured log output (the terminal belongs to the UI)
# log_file: /path/to/coffer.log
log_level: info

# Export pipeline trace spans (debugging aid)
trace: false

# Seed values for a new session
defaults:
  # allocation_strategy: sorted | proportional | none
  # proportional_method: proportional | urgency | equal | zero
  # scheduler_strategy: independent_scheduler
  contribution_interval: 14

# Bulk bill import
import:
  # Watch a directory for new .csv/.json/.yaml bill files
  # watch_dir: /path/to/bills
  watch_debounce: 1s

# UI settings
ui:
  show_status_bar: true
  currency_symbol: "$"
`
}

// WriteDefaultConfig writes the commented default template to path,
// refusing to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o644)
}
