// Package config loads and validates the canon-api YAML configuration.
package config

import (
	"log/slog"
)

// LogLevel is a slog level name as written in the config file.
type LogLevel string

// Log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid reports whether the level is one of the known names.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// Slog maps the config name to a slog.Level. Unknown names map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration for canon-api.
type Config struct {
	LogLevel LogLevel    `yaml:"log_level"`
	Redis    RedisConfig `yaml:"redis"`
	Schema   Schema      `yaml:"schema"`
}

// RedisConfig configures the Redis connection backing the location
// repository.
type RedisConfig struct {
	Endpoint           string `yaml:"endpoint"`
	PoolSize           int    `yaml:"pool_size"`
	MinIdleConns       int    `yaml:"min_idle_conns"`
	ConnMaxIdleSeconds int    `yaml:"conn_max_idle_seconds"`
	MaxRetries         int    `yaml:"max_retries"`
	UseTLS             bool   `yaml:"use_tls"`
}

// Schema configures schema loading. An empty Dir uses the schemas
// embedded in the binary.
type Schema struct {
	Dir string `yaml:"dir"`
}
