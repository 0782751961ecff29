package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdash/internal/datagen"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

var (
	generateRows   int64
	generateSeed   uint64
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic sales CSV file",
	Long: `Write a synthetic dataset in the CSV format accepted by 'ingest'.
Customers and products repeat across sales. A non-zero seed makes the
output reproducible.

Example:
  pgedge-salesdash generate --rows 100000 --output sales.csv
  pgedge-salesdash generate --rows 500 --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Int64Var(&generateRows, "rows", 0,
		"number of sales to generate (default: 10000)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0,
		"random seed (0 = random)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "",
		"output CSV file (default: sales.csv)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if generateRows > 0 {
		cfg.Generate.Rows = generateRows
	}
	if generateSeed > 0 {
		cfg.Generate.Seed = generateSeed
	}
	if generateOutput != "" {
		cfg.Generate.Output = generateOutput
	}

	// Validate configuration
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := datagen.DefaultOptions()
	opts.Rows = cfg.Generate.Rows
	opts.Seed = cfg.Generate.Seed

	logging.Info().
		Int64("rows", opts.Rows).
		Uint64("seed", opts.Seed).
		Str("output", cfg.Generate.Output).
		Msg("Generating dataset")

	n, err := datagen.NewGenerator(opts).WriteFile(ctx, cfg.Generate.Output)
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d rows to %s\n", n, cfg.Generate.Output)
	return nil
}
