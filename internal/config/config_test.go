package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithDatabaseURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://orders@localhost:5432/orders")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout.Duration)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Jobs.OrphanAuditInterval.Duration)
	assert.False(t, cfg.RateLimitEnabled())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderdesk.toml")
	content := `
[server]
port = "9090"
cors_origins = ["https://shop.example.com"]

[database]
url = "postgres://file@db/orders"
max_conns = 4
acquire_timeout = "2s"

[redis]
addr = "localhost:6379"

[rate_limit]
requests = 20
window = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://file@db/orders", cfg.Database.URL)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, 2*time.Second, cfg.Database.AcquireTimeout.Duration)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window.Duration)
	assert.True(t, cfg.RateLimitEnabled())
}

func TestLoad_MalformedEnvironment(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
	assert.Contains(t, err.Error(), "RATE_LIMIT_WINDOW")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero pool size",
			mutate:  func(c *Config) { c.Database.MaxConns = 0 },
			wantErr: "max_conns must be positive",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = "http" },
			wantErr: "invalid port",
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.Redis.Addr = "localhost:6379"
				c.RateLimit.Window = Duration{}
			},
			wantErr: "window must be positive",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.URL = "postgres://localhost/orders"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_NormalizesFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderdesk.toml")
	content := `
[database]
url = "postgres://file@db/orders"
isolation = "Repeatable  Read"

[log]
level = "WARNING"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_ISOLATION", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "repeatable read", cfg.Database.Isolation)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_NormalizesEnvironmentValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("DB_ISOLATION", "SERIALIZABLE")
	t.Setenv("LOG_LEVEL", "Debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "serializable", cfg.Database.Isolation)
	assert.Equal(t, "debug", cfg.Log.Level)
}
