// Package config loads crewswap settings from defaults, an optional YAML file,
// a .env file and CREWSWAP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"crewswap/internal/audit"
	"crewswap/internal/roster"
)

type MatchConfig struct {
	Threshold float64 `yaml:"threshold" validate:"gt=0,lte=100"`
}

type RosterConfig struct {
	YearPrefix   string `yaml:"year_prefix" validate:"omitempty,numeric,max=4"`
	ArtifactPath string `yaml:"artifact_path"`
	FutureOnly   bool   `yaml:"future_only"`
}

type ServerConfig struct {
	Port           int           `yaml:"port" validate:"gt=0,lte=65535"`
	AuthEnabled    bool          `yaml:"auth_enabled"`
	APIKeys        []string      `yaml:"api_keys"`
	SessionIdleStr string        `yaml:"session_idle"`
	SessionIdle    time.Duration `yaml:"-"` // parsed from SessionIdleStr
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type AuditConfig struct {
	Driver     string         `yaml:"driver" validate:"omitempty,oneof=none sqlite postgres"`
	SQLitePath string         `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file"`
}

type Config struct {
	Match  MatchConfig  `yaml:"match"`
	Roster RosterConfig `yaml:"roster"`
	Server ServerConfig `yaml:"server"`
	Audit  AuditConfig  `yaml:"audit"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Match: MatchConfig{Threshold: 50},
		Roster: RosterConfig{
			ArtifactPath: roster.ArtifactName,
			FutureOnly:   true,
		},
		Server: ServerConfig{
			Port:           8081,
			SessionIdleStr: "2h",
		},
		Audit: AuditConfig{
			Driver:     audit.DriverNone,
			SQLitePath: "crewswap-audit.db",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "crewswap",
				User:     "crewswap",
				Password: "crewswap",
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. An empty path skips the YAML file; a missing
// .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.finish(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// finish parses derived fields and validates the result.
func (c *Config) finish() error {
	if c.Server.SessionIdleStr != "" {
		d, err := time.ParseDuration(c.Server.SessionIdleStr)
		if err != nil {
			return fmt.Errorf("failed to parse session_idle: %w", err)
		}
		c.Server.SessionIdle = d
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AuditStore converts the audit section for audit.Open.
func (c Config) AuditStore() audit.Config {
	return audit.Config{
		Driver:     c.Audit.Driver,
		SQLitePath: c.Audit.SQLitePath,
		Postgres: audit.PostgresConfig{
			Host:     c.Audit.Postgres.Host,
			Port:     c.Audit.Postgres.Port,
			Database: c.Audit.Postgres.Database,
			User:     c.Audit.Postgres.User,
			Password: c.Audit.Postgres.Password,
		},
	}
}

// DateFilter returns the activity-date column filter for the reference time now.
func (c Config) DateFilter(now time.Time) roster.DateFilter {
	f := roster.DateFilter{YearPrefix: c.Roster.YearPrefix}
	if c.Roster.FutureOnly {
		f.After = now
	}
	return f
}

func applyEnv(c *Config) {
	c.Match.Threshold = envOrDefaultFloat("CREWSWAP_MATCH_THRESHOLD", c.Match.Threshold)
	c.Roster.YearPrefix = envOrDefault("CREWSWAP_YEAR_PREFIX", c.Roster.YearPrefix)
	c.Roster.ArtifactPath = envOrDefault("CREWSWAP_ARTIFACT_PATH", c.Roster.ArtifactPath)
	c.Roster.FutureOnly = envOrDefaultBool("CREWSWAP_FUTURE_ONLY", c.Roster.FutureOnly)
	c.Server.Port = envOrDefaultInt("CREWSWAP_PORT", c.Server.Port)
	c.Server.AuthEnabled = envOrDefaultBool("CREWSWAP_AUTH", c.Server.AuthEnabled)
	if keys := os.Getenv("CREWSWAP_API_KEYS"); keys != "" {
		c.Server.APIKeys = SplitList(keys)
	}
	c.Server.SessionIdleStr = envOrDefault("CREWSWAP_SESSION_IDLE", c.Server.SessionIdleStr)
	c.Audit.Driver = envOrDefault("CREWSWAP_AUDIT_DRIVER", c.Audit.Driver)
	c.Audit.SQLitePath = envOrDefault("CREWSWAP_AUDIT_SQLITE", c.Audit.SQLitePath)
	c.Audit.Postgres.Host = envOrDefault("POSTGRES_HOST", c.Audit.Postgres.Host)
	c.Audit.Postgres.Port = envOrDefaultInt("POSTGRES_PORT", c.Audit.Postgres.Port)
	c.Audit.Postgres.User = envOrDefault("POSTGRES_USER", c.Audit.Postgres.User)
	c.Audit.Postgres.Password = envOrDefault("POSTGRES_PASSWORD", c.Audit.Postgres.Password)
	c.Audit.Postgres.Database = envOrDefault("POSTGRES_DATABASE", c.Audit.Postgres.Database)
	c.Log.Level = envOrDefault("CREWSWAP_LOG_LEVEL", c.Log.Level)
	c.Log.File = envOrDefault("CREWSWAP_LOG_FILE", c.Log.File)
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
