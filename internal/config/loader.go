package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a
// validated [Config]. It is a convenience wrapper around
// [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It
// returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Redis.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("redis.pool_size %d must not be negative", cfg.Redis.PoolSize))
	}
	if cfg.Redis.MinIdleConns < 0 {
		errs = append(errs, fmt.Errorf("redis.min_idle_conns %d must not be negative", cfg.Redis.MinIdleConns))
	}
	if cfg.Schema.Dir != "" {
		info, err := os.Stat(cfg.Schema.Dir)
		if err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("schema.dir %q is not a readable directory", cfg.Schema.Dir))
		}
	}

	return errors.Join(errs...)
}
