// Package config loads server configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the server binary's settings. The CLI binary takes everything
// from flags and does not use this package.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	// Workers is the default aggregation worker count for requests that do
	// not set one; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// CacheTTLSeconds is how long cached summaries live; 0 disables caching.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// Default returns the configuration used when no file and no env are set.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		RedisAddr:       "localhost:6379",
		CacheTTLSeconds: 3600,
	}
}

// Load reads path (when non-empty) over the defaults, then applies env
// overrides: LISTEN_ADDR, REDIS_ADDR, REDIS_DB, WORKERS, CACHE_TTL_SECONDS.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("cannot read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config file %q: %w", path, err)
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WORKERS value %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL_SECONDS value %q: %w", v, err)
		}
		cfg.CacheTTLSeconds = n
	}

	return cfg, nil
}
