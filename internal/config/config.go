package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all cony configuration.
// Priority: ENV > TOML file > env-default tags.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracker  TrackerConfig  `toml:"tracker"`
}

type ServerConfig struct {
	Bind            string        `toml:"bind"             env:"CONY_BIND"             env-default:"127.0.0.1"`
	Port            int           `toml:"port"             env:"CONY_PORT"             env-default:"37778"`
	ReadTimeout     time.Duration `toml:"read_timeout"     env:"CONY_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `toml:"write_timeout"    env:"CONY_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"CONY_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type DatabaseConfig struct {
	Path string `toml:"path" env:"CONY_DB"` // empty: store.DefaultDBPath()
}

type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"  env:"CONY_JWT_SECRET"`
	Issuer     string        `toml:"issuer"      env:"CONY_JWT_ISSUER"  env-default:"cony"`
	AccessTTL  time.Duration `toml:"access_ttl"  env:"CONY_ACCESS_TTL"  env-default:"24h"`
	BcryptCost int           `toml:"bcrypt_cost" env:"CONY_BCRYPT_COST" env-default:"10"`
}

type LogConfig struct {
	Level      string `toml:"level"        env:"CONY_LOG_LEVEL"  env-default:"info"`
	Format     string `toml:"format"       env:"CONY_LOG_FORMAT" env-default:"console"` // "console" or "json"
	File       string `toml:"file"         env:"CONY_LOG_FILE"`
	MaxSizeMB  int    `toml:"max_size_mb"  env-default:"50"`
	MaxBackups int    `toml:"max_backups"  env-default:"3"`
	MaxAgeDays int    `toml:"max_age_days" env-default:"28"`
}

type MetricsConfig struct {
	Disabled bool `toml:"disabled" env:"CONY_METRICS_DISABLED"`
}

type TrackerConfig struct {
	Timezone          string        `toml:"timezone"            env:"CONY_TZ"             env-default:"UTC"`
	ActiveWindowDays  int           `toml:"active_window_days"  env-default:"7"`
	InactiveAfterDays int           `toml:"inactive_after_days" env-default:"30"`
	SweepInterval     time.Duration `toml:"sweep_interval"      env-default:"24h"`
}

// Default returns a Config with sensible defaults. JWTSecret is left empty;
// it must be supplied by the file or CONY_JWT_SECRET.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:            "127.0.0.1",
			Port:            37778,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Auth: AuthConfig{
			Issuer:     "cony",
			AccessTTL:  24 * time.Hour,
			BcryptCost: 10,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Tracker: TrackerConfig{
			Timezone:          "UTC",
			ActiveWindowDays:  7,
			InactiveAfterDays: 30,
			SweepInterval:     24 * time.Hour,
		},
	}
}

// DefaultPath returns ~/.cony/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cony", "config.toml"), nil
}

// Load reads configuration from path and the environment. A missing file is
// only an error when explicit is set; otherwise ENV + defaults are used.
func Load(path string, explicit bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks business rules on a loaded configuration.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("auth.access_ttl must be > 0 (got %s)", c.Auth.AccessTTL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if c.Tracker.ActiveWindowDays <= 0 {
		return fmt.Errorf("tracker.active_window_days must be > 0 (got %d)", c.Tracker.ActiveWindowDays)
	}
	if c.Tracker.InactiveAfterDays <= 0 {
		return fmt.Errorf("tracker.inactive_after_days must be > 0 (got %d)", c.Tracker.InactiveAfterDays)
	}
	if c.Tracker.SweepInterval <= 0 {
		return fmt.Errorf("tracker.sweep_interval must be > 0 (got %s)", c.Tracker.SweepInterval)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("tracker.timezone: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json (got %q)", c.Log.Format)
	}
	return nil
}

// Location resolves the tracker timezone calendar days are computed in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Tracker.Timezone)
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Write encodes cfg as TOML to path, creating parent directories. It refuses
// to overwrite an existing file.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
