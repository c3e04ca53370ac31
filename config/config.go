// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds server configuration: defaults, an optional YAML
// file, environment overrides and functional options, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvDBPath    = "AUTOMOTIVE_CYBERSEC_DB_PATH"
	EnvCachePath = "AUTOMOTIVE_CYBERSEC_CACHE_PATH"
	EnvPort      = "PORT"
)

// Config holds configuration for the server and its tooling.
type Config struct {
	// DBPath is the SQLite dataset file served read-only.
	DBPath string `yaml:"db_path"`

	// SeedDir holds the JSON seed files build-db reads.
	SeedDir string `yaml:"seed_dir"`

	// CachePath is the BadgerDB directory for rendered compliance matrices.
	// Empty disables the cache.
	CachePath string `yaml:"cache_path"`

	// CacheTTL bounds how long a cached matrix is kept.
	// Default: 48h
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// HTTPAddr is the listen address of serve-http.
	// Default: ":3000"
	HTTPAddr string `yaml:"http_addr"`

	// SessionTTL is how long an idle HTTP session is kept. Zero keeps
	// sessions until they are deleted or the server stops.
	// Default: 30m
	SessionTTL time.Duration `yaml:"session_ttl"`

	// PoolSize is the search worker pool size. Zero selects the CPU count.
	PoolSize int `yaml:"pool_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDBPath sets the dataset path.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithSeedDir sets the seed directory.
func WithSeedDir(dir string) ConfigOption {
	return func(c *Config) {
		c.SeedDir = dir
	}
}

// WithCachePath sets the matrix cache directory.
func WithCachePath(path string) ConfigOption {
	return func(c *Config) {
		c.CachePath = path
	}
}

// WithCacheTTL sets the matrix cache TTL.
func WithCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

// WithHTTPAddr sets the HTTP listen address.
func WithHTTPAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.HTTPAddr = addr
	}
}

// WithSessionTTL sets the idle HTTP session timeout.
func WithSessionTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.SessionTTL = ttl
	}
}

// WithPoolSize sets the search worker pool size.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// DefaultConfig returns a Config with the layout of a source checkout.
func DefaultConfig() *Config {
	return &Config{
		DBPath:     "data/automotive.db",
		SeedDir:    "data/seed",
		CacheTTL:   48 * time.Hour,
		HTTPAddr:   ":3000",
		SessionTTL: 30 * time.Minute,
		LogLevel:   "info",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Apply applies opts in order.
func (c *Config) Apply(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment overrides read through lookup, which is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvCachePath); ok && v != "" {
		c.CachePath = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		c.HTTPAddr = ":" + v
	}
}

// Load builds a Config from defaults, the optional file at path, the
// process environment and opts, then validates it.
func Load(path string, opts ...ConfigOption) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
// A bare port number is turned into a listen address.
func (c *Config) Normalize() {
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.SeedDir = strings.TrimSpace(c.SeedDir)
	c.CachePath = strings.TrimSpace(c.CachePath)
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, err := strconv.Atoi(c.HTTPAddr); err == nil {
		c.HTTPAddr = ":" + c.HTTPAddr
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.DBPath == "" {
		return errors.New("config: DBPath is required")
	}
	if c.HTTPAddr == "" {
		return errors.New("config: HTTPAddr is required")
	}
	if c.PoolSize < 0 {
		return errors.New("config: PoolSize cannot be negative")
	}
	if c.CacheTTL < 0 {
		return errors.New("config: CacheTTL cannot be negative")
	}
	if c.SessionTTL < 0 {
		return errors.New("config: SessionTTL cannot be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
