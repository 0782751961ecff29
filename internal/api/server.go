//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package api implements the HTTP interface of the sales dashboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/query"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// SalesReader is the query side used by the handlers. *query.Service
// satisfies it.
type SalesReader interface {
	GetSales(ctx context.Context, f filter.Filter) (*query.Result, error)
	Summarize(ctx context.Context, f filter.Filter) (query.Summary, error)
	Export(ctx context.Context, f filter.Filter, maxRows int, fn func(sales.Row) error) (int, error)
}

// Options configures the HTTP server.
type Options struct {
	// Listen is the address to listen on, e.g. ":3000".
	Listen string

	// AllowedOrigins lists the CORS origins. Empty allows all.
	AllowedOrigins []string

	// ShutdownTimeout bounds how long in-flight requests may drain.
	ShutdownTimeout time.Duration

	// ExportMaxRows caps the rows written by the export endpoint.
	// Zero means no cap.
	ExportMaxRows int
}

// DefaultOptions returns default server options.
func DefaultOptions() Options {
	return Options{
		Listen:          ":3000",
		ShutdownTimeout: 15 * time.Second,
		ExportMaxRows:   100000,
	}
}

// Server serves the sales API.
type Server struct {
	reader SalesReader
	opts   Options
	router *gin.Engine
}

// NewServer builds the router for reader.
func NewServer(reader SalesReader, opts Options) *Server {
	s := &Server{reader: reader, opts: opts}

	r := gin.New()
	r.Use(requestID(), accessLog(), recovery(), corsPolicy(opts.AllowedOrigins), handleErrors())

	v1 := r.Group("/api/v1")
	v1.GET("/ping", s.ping)
	v1.GET("/sales", s.getSales)
	v1.GET("/sales/export", s.exportSales)

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(NotFound(c.Request.URL.RequestURI()))
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully, giving
// in-flight requests up to ShutdownTimeout to complete.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("listen", s.opts.Listen).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Dur("timeout", s.opts.ShutdownTimeout).Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
