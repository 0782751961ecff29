package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdash/internal/api"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/query"
)

var (
	serveListen          string
	serveAllowedOrigins  []string
	serveShutdownTimeout time.Duration
	serveExportMaxRows   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sales API",
	Long: `Serve the sales API over HTTP until interrupted with Ctrl+C.
In-flight requests are given up to the shutdown timeout to complete.

Endpoints:
  GET /api/v1/ping          - liveness check
  GET /api/v1/sales         - filtered, paginated sales with KPIs
  GET /api/v1/sales/export  - filtered sales as an xlsx workbook

Example:
  pgedge-salesdash serve --listen :3000
  pgedge-salesdash serve --allowed-origin http://localhost:5173`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"address to listen on (default: :3000)")
	serveCmd.Flags().StringSliceVar(&serveAllowedOrigins, "allowed-origin", nil,
		"allowed CORS origin, may be repeated (default: all)")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 0,
		"graceful shutdown timeout (default: 15s)")
	serveCmd.Flags().IntVar(&serveExportMaxRows, "export-max-rows", 0,
		"maximum rows in a spreadsheet export (default: 100000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if len(serveAllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = serveAllowedOrigins
	}
	if serveShutdownTimeout > 0 {
		cfg.Server.ShutdownTimeout = serveShutdownTimeout
	}
	if serveExportMaxRows > 0 {
		cfg.Server.ExportMaxRows = serveExportMaxRows
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	logging.Info().
		Str("listen", cfg.Server.Listen).
		Strs("allowed_origins", cfg.Server.AllowedOrigins).
		Int("export_max_rows", cfg.Server.ExportMaxRows).
		Msg("Starting sales API")

	server := api.NewServer(query.NewService(pool), api.Options{
		Listen:          cfg.Server.Listen,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ExportMaxRows:   cfg.Server.ExportMaxRows,
	})
	if err := server.Run(ctx); err != nil {
		return err
	}

	logging.Info().Msg("Sales API stopped")
	return nil
}
