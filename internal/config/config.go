package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Jobs      JobsConfig      `toml:"jobs"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port            string   `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// DatabaseConfig contains connection pool and transaction settings
type DatabaseConfig struct {
	URL            string   `toml:"url"`
	MaxConns       int32    `toml:"max_conns"`
	MinConns       int32    `toml:"min_conns"`
	AcquireTimeout Duration `toml:"acquire_timeout"`
	ApplySchema    bool     `toml:"apply_schema"`
	Isolation      string   `toml:"isolation"` // Postgres level name, empty for the server default
}

// RedisConfig contains the connection used by the rate limiter. An empty
// address disables rate limiting.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RateLimitConfig contains fixed-window limits applied per client IP
type RateLimitConfig struct {
	Requests int      `toml:"requests"`
	Window   Duration `toml:"window"`
}

// JobsConfig contains background job intervals. Zero disables a job.
type JobsConfig struct {
	OrphanAuditInterval Duration `toml:"orphan_audit_interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration decodes TOML strings such as "5s" or "10m"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := cast.ToDurationE(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			AcquireTimeout: Duration{5 * time.Second},
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   Duration{time.Minute},
		},
		Jobs: JobsConfig{
			OrphanAuditInterval: Duration{10 * time.Minute},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional TOML file named by
// CONFIG_FILE, and environment overrides, in that order
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	set := func(key string, apply func(string) error) {
		raw, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		if err := apply(strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	set("DATABASE_URL", func(v string) error { c.Database.URL = v; return nil })
	set("PORT", func(v string) error { c.Server.Port = v; return nil })
	set("DB_MAX_CONNS", func(v string) (err error) { c.Database.MaxConns, err = cast.ToInt32E(v); return })
	set("DB_MIN_CONNS", func(v string) (err error) { c.Database.MinConns, err = cast.ToInt32E(v); return })
	set("DB_ACQUIRE_TIMEOUT", func(v string) (err error) { c.Database.AcquireTimeout.Duration, err = cast.ToDurationE(v); return })
	set("DB_APPLY_SCHEMA", func(v string) (err error) { c.Database.ApplySchema, err = cast.ToBoolE(v); return })
	set("DB_ISOLATION", func(v string) error { c.Database.Isolation = v; return nil })
	set("REDIS_ADDR", func(v string) error { c.Redis.Addr = v; return nil })
	set("REDIS_PASSWORD", func(v string) error { c.Redis.Password = v; return nil })
	set("REDIS_DB", func(v string) (err error) { c.Redis.DB, err = cast.ToIntE(v); return })
	set("RATE_LIMIT_REQUESTS", func(v string) (err error) { c.RateLimit.Requests, err = cast.ToIntE(v); return })
	set("RATE_LIMIT_WINDOW", func(v string) (err error) { c.RateLimit.Window.Duration, err = cast.ToDurationE(v); return })
	set("ORPHAN_AUDIT_INTERVAL", func(v string) (err error) { c.Jobs.OrphanAuditInterval.Duration, err = cast.ToDurationE(v); return })
	set("SHUTDOWN_TIMEOUT", func(v string) (err error) { c.Server.ShutdownTimeout.Duration, err = cast.ToDurationE(v); return })
	set("LOG_LEVEL", func(v string) error { c.Log.Level = v; return nil })
	set("CORS_ORIGINS", func(v string) error {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
		return nil
	})

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// normalize lowercases names that may come from either the file or the
// environment and folds "warning" into "warn"
func (c *Config) normalize() {
	c.Database.Isolation = strings.Join(strings.Fields(strings.ToLower(c.Database.Isolation)), " ")
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, errors.New("database max_conns must be positive"))
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("database min_conns must be between 0 and max_conns"))
	}
	if c.Database.AcquireTimeout.Duration < 0 {
		errs = append(errs, errors.New("database acquire_timeout cannot be negative"))
	}
	switch c.Database.Isolation {
	case "", "read committed", "repeatable read", "serializable":
	default:
		errs = append(errs, fmt.Errorf("unsupported isolation level %q", c.Database.Isolation))
	}
	if port, err := cast.ToIntE(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if len(c.Server.CORSOrigins) == 0 {
		errs = append(errs, errors.New("at least one CORS origin is required"))
	}
	if c.Redis.Addr != "" {
		if c.RateLimit.Requests <= 0 {
			errs = append(errs, errors.New("rate_limit requests must be positive"))
		}
		if c.RateLimit.Window.Duration <= 0 {
			errs = append(errs, errors.New("rate_limit window must be positive"))
		}
	}
	if c.Jobs.OrphanAuditInterval.Duration < 0 {
		errs = append(errs, errors.New("orphan_audit_interval cannot be negative"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// RateLimitEnabled reports whether a Redis backend is configured
func (c *Config) RateLimitEnabled() bool {
	return c.Redis.Addr != ""
}
