package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "data/automotive.db", cfg.DBPath)
	assert.Equal(t, "data/seed", cfg.SeedDir)
	assert.Empty(t, cfg.CachePath)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithDBPath("/srv/automotive.db"),
		WithSeedDir("/srv/seed"),
		WithCachePath("/var/cache/automcp"),
		WithCacheTTL(time.Hour),
		WithHTTPAddr("127.0.0.1:8080"),
		WithPoolSize(4),
		WithSessionTTL(5*time.Minute),
		WithLogLevel("debug"),
	)
	assert.Equal(t, "/srv/automotive.db", cfg.DBPath)
	assert.Equal(t, "/srv/seed", cfg.SeedDir)
	assert.Equal(t, "/var/cache/automcp", cfg.CachePath)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestNormalize(t *testing.T) {
	cfg := NewConfig(WithHTTPAddr(" 8080 "), WithLogLevel(" WARN"), WithDBPath(" a.db "))
	cfg.Normalize()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "a.db", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{"valid", nil, ""},
		{"missing db path", []ConfigOption{WithDBPath("  ")}, "DBPath is required"},
		{"missing addr", []ConfigOption{WithHTTPAddr("")}, "HTTPAddr is required"},
		{"negative pool", []ConfigOption{WithPoolSize(-1)}, "PoolSize cannot be negative"},
		{"negative ttl", []ConfigOption{WithCacheTTL(-time.Second)}, "CacheTTL cannot be negative"},
		{"negative session ttl", []ConfigOption{WithSessionTTL(-time.Minute)}, "SessionTTL cannot be negative"},
		{"sessions never expire", []ConfigOption{WithSessionTTL(0)}, ""},
		{"bad level", []ConfigOption{WithLogLevel("verbose")}, `invalid log level "verbose"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDBPath:    "/env/automotive.db",
		EnvCachePath: "/env/cache",
		EnvPort:      "9090",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "/env/automotive.db", cfg.DBPath)
	assert.Equal(t, "/env/cache", cfg.CachePath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)

	cfg = DefaultConfig()
	cfg.ApplyEnv(func(string) (string, bool) { return "", true })
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /data/automotive.db
cache_path: /data/cache
cache_ttl: 2h
pool_size: 3
session_ttl: 10m
`), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "/data/automotive.db", cfg.DBPath)
	assert.Equal(t, "/data/cache", cfg.CachePath)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.PoolSize)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: [1, 2"), 0644))
	err = cfg.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /file.db\nhttp_addr: \":4000\"\n"), 0644))
	t.Setenv(EnvDBPath, "/env.db")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvCachePath, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env.db", cfg.DBPath)
	assert.Equal(t, ":4000", cfg.HTTPAddr)

	cfg, err = Load(path, WithDBPath("/flag.db"))
	require.NoError(t, err)
	assert.Equal(t, "/flag.db", cfg.DBPath)

	_, err = Load(path, WithLogLevel("loud"))
	assert.Error(t, err)
}
