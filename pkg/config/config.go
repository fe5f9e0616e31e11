// Package config resolves runtime configuration for the Ferry bridge.
//
// Priority order: explicit ferry.yaml values > FERRY_* environment
// overrides > built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when ferry.yaml leaves a value unset.
const (
	DefaultFlushIntervalMS = 16
	DefaultCacheCapacity   = 512
	DefaultInspectPort     = 9339
)

// Config represents the optional ferry.yaml configuration.
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Cache   CacheConfig   `yaml:"cache"`
	Inspect InspectConfig `yaml:"inspect"`
}

// BridgeConfig contains message pipeline settings.
type BridgeConfig struct {
	FlushIntervalMS int    `yaml:"flush_interval_ms,omitempty"`
	ImmediateHigh   *bool  `yaml:"immediate_high,omitempty"`
	Codec           string `yaml:"codec,omitempty"`
}

// CacheConfig contains style transform cache settings.
type CacheConfig struct {
	Capacity int `yaml:"capacity,omitempty"`
}

// InspectConfig contains dev inspection server settings.
type InspectConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	Port    int  `yaml:"port,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	FlushInterval  time.Duration
	ImmediateHigh  bool
	Codec          string
	CacheCapacity  int
	InspectEnabled bool
	InspectPort    int
}

// LoadOptional reads ferry.yaml from dir if present. A missing file is
// not an error; it yields the zero Config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "ferry.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read ferry.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse ferry.yaml: %w", err)
	}

	return &cfg, nil
}

// Resolve loads ferry.yaml (if present), applies environment overrides
// and defaults, and validates the result.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve applies environment overrides and defaults to an already
// loaded Config.
func (cfg *Config) Resolve() (*Resolved, error) {
	r := &Resolved{
		FlushInterval:  DefaultFlushIntervalMS * time.Millisecond,
		ImmediateHigh:  true,
		Codec:          "json",
		CacheCapacity:  DefaultCacheCapacity,
		InspectEnabled: cfg.Inspect.Enabled,
		InspectPort:    DefaultInspectPort,
	}

	if cfg.Bridge.FlushIntervalMS != 0 {
		if cfg.Bridge.FlushIntervalMS < 0 {
			return nil, fmt.Errorf("bridge.flush_interval_ms must be positive, got %d", cfg.Bridge.FlushIntervalMS)
		}
		r.FlushInterval = time.Duration(cfg.Bridge.FlushIntervalMS) * time.Millisecond
	}
	if cfg.Bridge.ImmediateHigh != nil {
		r.ImmediateHigh = *cfg.Bridge.ImmediateHigh
	}
	if cfg.Bridge.Codec != "" {
		r.Codec = cfg.Bridge.Codec
	}
	if r.Codec != "json" && r.Codec != "cbor" {
		return nil, fmt.Errorf("bridge.codec must be \"json\" or \"cbor\", got %q", r.Codec)
	}

	if cfg.Cache.Capacity != 0 {
		if cfg.Cache.Capacity < 0 {
			return nil, fmt.Errorf("cache.capacity must be positive, got %d", cfg.Cache.Capacity)
		}
		r.CacheCapacity = cfg.Cache.Capacity
	}
	if env := os.Getenv("FERRY_CACHE_CAPACITY"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid FERRY_CACHE_CAPACITY %q", env)
		}
		r.CacheCapacity = n
	}

	if cfg.Inspect.Port != 0 {
		r.InspectPort = cfg.Inspect.Port
	}
	if env := os.Getenv("FERRY_INSPECT_PORT"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid FERRY_INSPECT_PORT %q", env)
		}
		r.InspectPort = n
	}
	if r.InspectPort < 0 || r.InspectPort > 65535 {
		return nil, fmt.Errorf("inspect.port out of range: %d", r.InspectPort)
	}

	return r, nil
}
