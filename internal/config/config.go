// Package config loads CLI configuration from YAML, .env files and
// FORMFLOW_* environment variables.
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
	"gopkg.in/yaml.v3"
)

// Sink kinds accepted by SinkConfig.Kind.
const (
	SinkLog    = "log"
	SinkSQLite = "sqlite"
	SinkHTTP   = "http"
)

// Config is the root configuration structure.
type Config struct {
	Schema  SchemaConfig  `yaml:"schema"`
	Server  ServerConfig  `yaml:"server"`
	Sink    SinkConfig    `yaml:"sink"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SchemaConfig locates the form schema.
type SchemaConfig struct {
	Path      string `yaml:"path"`
	AllowHTTP bool   `yaml:"allow_http"`
	MaxBytes  int64  `yaml:"max_bytes"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxSessions  int           `yaml:"max_sessions"`
}

// SinkConfig selects where confirmed forms go.
type SinkConfig struct {
	Kind     string           `yaml:"kind"` // "log", "sqlite" or "http"
	FormName string           `yaml:"form_name"`
	SQLite   SQLiteSinkConfig `yaml:"sqlite"`
	HTTP     HTTPSinkConfig   `yaml:"http"`
}

// SQLiteSinkConfig configures the SQLite sink.
type SQLiteSinkConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPSinkConfig configures the webhook sink.
type HTTPSinkConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file. An empty path skips the file and
// builds the configuration from the environment alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// applyEnvOverrides applies FORMFLOW_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FORMFLOW_SCHEMA"); v != "" {
		cfg.Schema.Path = v
	}
	if v := os.Getenv("FORMFLOW_SCHEMA_ALLOW_HTTP"); v != "" {
		cfg.Schema.AllowHTTP = parseBool(v)
	}

	if v := os.Getenv("FORMFLOW_LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FORMFLOW_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MaxSessions = n
		}
	}

	if v := os.Getenv("FORMFLOW_SINK"); v != "" {
		cfg.Sink.Kind = v
	}
	if v := os.Getenv("FORMFLOW_FORM_NAME"); v != "" {
		cfg.Sink.FormName = v
	}
	if v := os.Getenv("FORMFLOW_SQLITE_DSN"); v != "" {
		cfg.Sink.SQLite.DSN = v
	}
	if v := os.Getenv("FORMFLOW_HTTP_ENDPOINT"); v != "" {
		cfg.Sink.HTTP.URL = v
	}
	if v := os.Getenv("FORMFLOW_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sink.HTTP.Timeout = d
		}
	}

	if v := os.Getenv("FORMFLOW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FORMFLOW_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FORMFLOW_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Schema.MaxBytes == 0 {
		cfg.Schema.MaxBytes = 1 << 20
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Sink.Kind == "" {
		cfg.Sink.Kind = SinkLog
	}
	if cfg.Sink.SQLite.DSN == "" {
		cfg.Sink.SQLite.DSN = "formflow.db"
	}
	if cfg.Sink.HTTP.Timeout == 0 {
		cfg.Sink.HTTP.Timeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Sink.Kind {
	case SinkLog, SinkSQLite:
	case SinkHTTP:
		if c.Sink.HTTP.URL == "" {
			return errors.New("sink.http.url is required for the http sink")
		}
	default:
		return fmt.Errorf("sink.kind must be 'log', 'sqlite' or 'http', got %q", c.Sink.Kind)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("server.max_sessions must not be negative")
	}
	return nil
}
