package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the conventional config file name.
const FileName = "propledger.yaml"

// Environment variables that override the file.
const (
	EnvAddr        = "PROPLEDGER_ADDR"
	EnvDBPath      = "PROPLEDGER_DB_PATH"
	EnvLogLevel    = "PROPLEDGER_LOG_LEVEL"
	EnvLogDevelop  = "PROPLEDGER_LOG_DEVELOPMENT"
	EnvEnforceUnit = "PROPLEDGER_ENFORCE_UNIT_OWNERSHIP"
)

// Config represents the top-level propledger.yaml configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Ledger   LedgerConfig   `yaml:"ledger"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LedgerConfig toggles ledger rules.
type LedgerConfig struct {
	// EnforceUnitOwnership checks entry units against the unit directory.
	EnforceUnitOwnership bool `yaml:"enforce_unit_ownership"`
}

// Load reads a propledger.yaml file from disk. Fields the file omits keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:        "data/propledger.db",
			BusyTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Ledger: LedgerConfig{
			EnforceUnitOwnership: true,
		},
	}
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any PROPLEDGER_* variables from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogDevelop); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogDevelop, err)
		}
		c.Log.Development = b
	}
	if v, ok := lookup(EnvEnforceUnit); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEnforceUnit, err)
		}
		c.Ledger.EnforceUnitOwnership = b
	}
	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is empty")
	}
	if c.Server.ReadTimeout < 0 {
		problems = append(problems, "server.read_timeout is negative")
	}
	if c.Server.WriteTimeout < 0 {
		problems = append(problems, "server.write_timeout is negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, "database.path is empty")
	}
	if c.Database.BusyTimeout < 0 {
		problems = append(problems, "database.busy_timeout is negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a zap level", c.Log.Level))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
