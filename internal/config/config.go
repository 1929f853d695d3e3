package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "ruyienv"
	configFileName = "config.yaml"
	dbFileName     = "ruyienv.db"
)

// Log formats
const (
	LogFormatAuto    = "auto"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds runtime settings for the ruyienv command
type Config struct {
	// DBPath is the SQLite database holding activations and removal history
	// Default: ~/.config/ruyienv/ruyienv.db
	DBPath string `yaml:"db_path"`

	// LogLevel is the minimum zerolog level written to stderr
	// Default: warn, so skipped environments are reported
	LogLevel string `yaml:"log_level"`

	// LogFormat selects console or JSON log lines; auto picks console on a terminal
	// Default: auto
	LogFormat string `yaml:"log_format"`

	// NoColor disables colored output
	// Default: false
	NoColor bool `yaml:"no_color"`
}

// Dir returns the ruyienv config directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// Default returns the configuration used when nothing is overridden
func Default() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:    filepath.Join(dir, dbFileName),
		LogLevel:  zerolog.WarnLevel.String(),
		LogFormat: LogFormatAuto,
	}, nil
}

// Load builds the configuration from defaults, the optional config file
// and environment variables, in increasing priority:
//
//	RUYIENV_CONFIG      path of the YAML config file
//	RUYIENV_DB          database path
//	RUYIENV_LOG_LEVEL   trace|debug|info|warn|error|disabled
//	RUYIENV_LOG_FORMAT  auto|console|json
//	NO_COLOR            any non-empty value disables color
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	path := os.Getenv("RUYIENV_CONFIG")
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(dir, configFileName)
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays values set in the YAML file at path
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.DBPath != "" {
		c.DBPath = expandHome(file.DBPath)
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
	}
	if file.NoColor {
		c.NoColor = true
	}
	return nil
}

func (c *Config) mergeEnv() {
	if v := os.Getenv("RUYIENV_DB"); v != "" {
		c.DBPath = expandHome(v)
	}
	if v := os.Getenv("RUYIENV_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RUYIENV_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if os.Getenv("NO_COLOR") != "" {
		c.NoColor = true
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (must be auto, console or json)", c.LogFormat)
	}
	return nil
}

// Level returns the parsed log level; call Validate first
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}
