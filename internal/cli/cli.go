//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-salesdash.
package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdash/internal/config"
	"github.com/pgEdge/pgedge-salesdash/internal/db"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-salesdash",
		Short: "Sales records dashboard backed by PostgreSQL",
		Long: `pgedge-salesdash loads a retail sales dataset into PostgreSQL and
serves it through a filtered, paginated HTTP API with summary KPIs.

It also generates synthetic datasets in the same CSV format, and includes
a terminal client for browsing the API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-salesdash.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// connect opens a pool using the configured pool settings.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.ConnectWithOptions(ctx, cfg.Connection, cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema, row counts and ingestion history",
	Long: `Show whether the schema exists, how many rows each table holds and
the metadata recorded by the last init and ingest runs.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	exists, err := db.SchemaExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		cmd.Println("Schema not initialized. Run 'pgedge-salesdash init' first.")
		return nil
	}

	counts, err := db.TableCounts(ctx, pool)
	if err != nil {
		return err
	}
	cmd.Println("Tables:")
	for _, table := range db.Tables {
		cmd.Printf("  %-10s %d rows\n", table, counts[table])
	}

	meta, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		logging.Debug().Err(err).Msg("No metadata available")
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Println()
	cmd.Println("Metadata:")
	for _, k := range keys {
		cmd.Printf("  %-20s %s\n", k, meta[k])
	}
	return nil
}
