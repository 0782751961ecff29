//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-salesdash.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-salesdash/internal/db"
)

// Config holds all configuration for pgedge-salesdash.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Pool holds connection pool settings.
	Pool PoolConfig `mapstructure:"pool"`

	// Server holds configuration for the serve subcommand.
	Server ServerConfig `mapstructure:"server"`

	// Ingest holds configuration for the ingest subcommand.
	Ingest IngestConfig `mapstructure:"ingest"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`

	// Browse holds configuration for the browse subcommand.
	Browse BrowseConfig `mapstructure:"browse"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	// Listen is the address to listen on.
	Listen string `mapstructure:"listen"`

	// AllowedOrigins lists the CORS origins. Empty or "*" allows all.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// ExportMaxRows caps the spreadsheet export (0 = no cap).
	ExportMaxRows int `mapstructure:"export_max_rows"`
}

// IngestConfig holds configuration for CSV ingestion.
type IngestConfig struct {
	// File is the CSV file to load.
	File string `mapstructure:"file"`

	// BatchSize is the number of rows per transaction.
	BatchSize int `mapstructure:"batch_size"`
}

// GenerateConfig holds configuration for fixture generation.
type GenerateConfig struct {
	// Rows is the number of sales to generate.
	Rows int64 `mapstructure:"rows"`

	// Seed makes the output reproducible (0 = random).
	Seed uint64 `mapstructure:"seed"`

	// Output is the CSV file to write.
	Output string `mapstructure:"output"`
}

// BrowseConfig holds configuration for the terminal client.
type BrowseConfig struct {
	// URL is the API base URL.
	URL string `mapstructure:"url"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	pool := db.DefaultPoolOptions()
	return &Config{
		LogLevel: "info",
		Pool: PoolConfig{
			MaxConns:        pool.MaxConns,
			MinConns:        pool.MinConns,
			MaxConnLifetime: pool.MaxConnLifetime,
			MaxConnIdleTime: pool.MaxConnIdleTime,
		},
		Server: ServerConfig{
			Listen:          ":3000",
			ShutdownTimeout: 15 * time.Second,
			ExportMaxRows:   100000,
		},
		Ingest: IngestConfig{
			BatchSize: 1000,
		},
		Generate: GenerateConfig{
			Rows:   10000,
			Output: "sales.csv",
		},
		Browse: BrowseConfig{
			URL: "http://localhost:3000/api/v1",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-salesdash.yaml
// 3. ~/.config/pgedge-salesdash/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-salesdash")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-salesdash"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// PoolOptions converts the pool section to database pool options.
func (c *Config) PoolOptions() db.PoolOptions {
	opts := db.DefaultPoolOptions()
	opts.MaxConns = c.Pool.MaxConns
	opts.MinConns = c.Pool.MinConns
	opts.MaxConnLifetime = c.Pool.MaxConnLifetime
	opts.MaxConnIdleTime = c.Pool.MaxConnIdleTime
	return opts
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Pool.MaxConns < 0 || c.Pool.MinConns < 0 {
		return fmt.Errorf("pool sizes must be non-negative")
	}
	if c.Pool.MaxConns > 0 && c.Pool.MinConns > c.Pool.MaxConns {
		return fmt.Errorf("pool min_conns must be <= max_conns")
	}
	return nil
}

// ValidateServe checks configuration required for serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	if c.Server.ExportMaxRows < 0 {
		return fmt.Errorf("export_max_rows must be non-negative")
	}
	return nil
}

// ValidateIngest checks configuration required for ingest command.
func (c *Config) ValidateIngest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Ingest.File == "" {
		return fmt.Errorf("CSV file is required for ingest")
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}

// ValidateGenerate checks configuration required for generate command.
// No database connection is needed.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	if c.Generate.Output == "" {
		return fmt.Errorf("output file is required for generate")
	}
	return nil
}

// ValidateBrowse checks configuration required for browse command.
func (c *Config) ValidateBrowse() error {
	if c.Browse.URL == "" {
		return fmt.Errorf("API URL is required for browse")
	}
	return nil
}
