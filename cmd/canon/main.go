// Package main is the entry point for the canon-api CLI
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentcraft/canon-api/internal/config"
	"github.com/contentcraft/canon-api/internal/orchestrators/canon"
	"github.com/contentcraft/canon-api/internal/pkg/clock"
	"github.com/contentcraft/canon-api/internal/pkg/idgen"
	redisclient "github.com/contentcraft/canon-api/internal/redis"
	"github.com/contentcraft/canon-api/internal/repositories/location"
	"github.com/contentcraft/canon-api/internal/schema"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "canon-api",
	Short: "ContentCraft canon content validation",
	Long:  `canon-api validates canon content blocks (locations, NPCs, monsters) against versioned schemas, detects geometry conflicts, and keeps inter-room doors bidirectionally consistent.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(geometryCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads the --config file when given, otherwise returns
// defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return &config.Config{
			Redis: config.RedisConfig{Endpoint: "localhost:6379"},
		}, nil
	}
	return config.Load(configPath)
}

// newService wires the orchestrator from config. The Redis connection
// is lazy, so commands that never touch the repository work without a
// running Redis.
func newService() (canon.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel.Slog(),
	})))

	var registry *schema.Registry
	if cfg.Schema.Dir != "" {
		registry, err = schema.NewRegistryFromDir(cfg.Schema.Dir)
	} else {
		registry, err = schema.NewRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	endpoint := cfg.Redis.Endpoint
	if endpoint == "" {
		endpoint = "localhost:6379"
	}
	client, err := redisclient.NewClient(endpoint, &redisclient.Options{
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxIdleTime: time.Duration(cfg.Redis.ConnMaxIdleSeconds) * time.Second,
		MaxRetries:      cfg.Redis.MaxRetries,
		UseTLS:          cfg.Redis.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return canon.NewOrchestrator(&canon.Config{
		Registry:     registry,
		LocationRepo: location.NewRedisRepository(client),
		IDGenerator:  idgen.NewUUID("loc"),
		Clock:        clock.New(),
	})
}
