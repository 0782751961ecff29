package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdash/internal/db"
	"github.com/pgEdge/pgedge-salesdash/internal/ingest"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

var (
	ingestFile      string
	ingestBatchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load a sales CSV file into the database",
	Long: `Load a sales CSV file into the customers, products and sales tables.
Rows are written in batches, one transaction per batch. Rows whose keys
already exist are skipped. A batch that fails is logged and the load
continues with the next one.

Example:
  pgedge-salesdash ingest sales.csv
  pgedge-salesdash ingest --file sales.csv --batch-size 5000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "",
		"CSV file to load")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0,
		"rows per transaction (default: 1000)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if len(args) == 1 {
		cfg.Ingest.File = args[0]
	}
	if ingestFile != "" {
		cfg.Ingest.File = ingestFile
	}
	if ingestBatchSize > 0 {
		cfg.Ingest.BatchSize = ingestBatchSize
	}

	// Validate configuration
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
		return fmt.Errorf("database has not been initialized; run 'pgedge-salesdash init' first")
	}

	logging.Info().
		Str("file", cfg.Ingest.File).
		Int("batch_size", cfg.Ingest.BatchSize).
		Msg("Starting ingestion")

	loader := ingest.NewLoader(pool, ingest.Options{BatchSize: cfg.Ingest.BatchSize})
	result, err := loader.LoadFile(ctx, cfg.Ingest.File)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := db.SaveIngestMetadata(ctx, pool, db.IngestRecord{
		File:          cfg.Ingest.File,
		RowsInserted:  result.SalesInserted,
		FailedBatches: result.BatchesFailed,
	}); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	cmd.Printf("Read %d rows: %d sales, %d customers, %d products inserted",
		result.RowsRead, result.SalesInserted, result.CustomersInserted, result.ProductsInserted)
	if result.BatchesFailed > 0 {
		cmd.Printf(" (%d of %d batches failed)", result.BatchesFailed, result.BatchesFailed+result.BatchesCommitted)
	}
	cmd.Println()
	return nil
}
