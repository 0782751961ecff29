//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest loads the sales CSV dataset into the database in batches.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-salesdash/internal/db"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/progress"
)

// DefaultBatchSize is the number of CSV rows written per transaction.
const DefaultBatchSize = 1000

const insertCustomerSQL = `
INSERT INTO customers (customer_id, customer_name, phone, gender, age, region, customer_type)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (customer_id) DO NOTHING`

const insertProductSQL = `
INSERT INTO products (product_id, product_name, brand, category, tags)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (product_id) DO NOTHING`

const insertSaleSQL = `
INSERT INTO sales (transaction_id, date, customer_id, product_id, quantity,
    price_per_unit, discount_percentage, total_amount, final_amount,
    payment_method, order_status, delivery_type, store_id, store_location,
    salesperson_id, employee_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (transaction_id) DO NOTHING`

// Options configures a Loader.
type Options struct {
	// BatchSize is the number of CSV rows per transaction.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultOptions returns default loader options.
func DefaultOptions() Options {
	return Options{
		BatchSize:        DefaultBatchSize,
		ProgressInterval: progress.DefaultInterval,
	}
}

// Result summarises an ingestion run.
type Result struct {
	RowsRead          int64
	BatchesCommitted  int
	BatchesFailed     int
	CustomersInserted int64
	ProductsInserted  int64
	SalesInserted     int64
	Duration          time.Duration
}

// Loader writes CSV records to the customers, products and sales tables.
type Loader struct {
	db   db.DB
	opts Options
}

// NewLoader creates a loader. Non-positive options fall back to defaults.
func NewLoader(conn db.DB, opts Options) *Loader {
	defaults := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaults.ProgressInterval
	}
	return &Loader{db: conn, opts: opts}
}

// LoadFile ingests the CSV file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(ctx, path, f)
}

// Load ingests CSV data from r. Each batch is written in its own
// transaction; a batch that fails is logged and skipped and the load
// continues. Load itself fails only on unreadable input, a missing
// required column or context cancellation.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) (Result, error) {
	start := time.Now()
	var result Result

	reader, err := NewReader(r)
	if err != nil {
		return result, err
	}

	reporter := progress.NewReporter(name, "Ingesting", 0, l.opts.ProgressInterval)
	b := newBatch(l.opts.BatchSize)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}
		result.RowsRead++
		b.add(rec)

		if b.len() >= l.opts.BatchSize {
			if err := l.flush(ctx, b, &result); err != nil {
				return result, err
			}
			reporter.Update(int64(l.opts.BatchSize))
		}
	}

	if b.len() > 0 {
		rows := b.len()
		if err := l.flush(ctx, b, &result); err != nil {
			return result, err
		}
		reporter.Update(int64(rows))
	}
	reporter.Done()

	result.Duration = time.Since(start)
	logging.Info().
		Str("file", name).
		Int64("rows", result.RowsRead).
		Int("batches", result.BatchesCommitted).
		Int("failed_batches", result.BatchesFailed).
		Int64("sales_inserted", result.SalesInserted).
		Dur("duration", result.Duration).
		Msg("Ingestion complete")

	return result, nil
}

// flush writes the batch and resets it. Write failures are counted and
// logged; only context cancellation is returned.
func (l *Loader) flush(ctx context.Context, b *batch, result *Result) error {
	defer b.reset()

	n := result.BatchesCommitted + result.BatchesFailed + 1
	counts, err := l.writeBatch(ctx, b)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		result.BatchesFailed++
		logging.Error().
			Err(err).
			Int("batch", n).
			Int("rows", b.len()).
			Msg("Batch failed")
		return nil
	}

	result.BatchesCommitted++
	result.CustomersInserted += counts.customers
	result.ProductsInserted += counts.products
	result.SalesInserted += counts.sales

	logging.Info().
		Int("batch", n).
		Int("rows", b.len()).
		Int64("sales_inserted", counts.sales).
		Msg("Processed batch")
	return nil
}

type insertCounts struct {
	customers int64
	products  int64
	sales     int64
}

func (l *Loader) writeBatch(ctx context.Context, b *batch) (insertCounts, error) {
	var counts insertCounts

	err := pgx.BeginFunc(ctx, l.db, func(tx pgx.Tx) error {
		qb := &pgx.Batch{}
		for _, c := range b.customers {
			qb.Queue(insertCustomerSQL, c.CustomerID, c.CustomerName, c.Phone,
				c.Gender, c.Age, c.Region, c.CustomerType)
		}
		for _, p := range b.products {
			qb.Queue(insertProductSQL, p.ProductID, p.ProductName, p.Brand,
				p.Category, p.Tags)
		}
		for _, s := range b.sales {
			qb.Queue(insertSaleSQL, s.TransactionID, s.Date, s.CustomerID,
				s.ProductID, s.Quantity, s.PricePerUnit, s.DiscountPercentage,
				s.TotalAmount, s.FinalAmount, s.PaymentMethod, s.OrderStatus,
				s.DeliveryType, s.StoreID, s.StoreLocation, s.SalespersonID,
				s.EmployeeName)
		}

		br := tx.SendBatch(ctx, qb)
		for i := 0; i < qb.Len(); i++ {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return err
			}
			switch {
			case i < len(b.customers):
				counts.customers += tag.RowsAffected()
			case i < len(b.customers)+len(b.products):
				counts.products += tag.RowsAffected()
			default:
				counts.sales += tag.RowsAffected()
			}
		}
		return br.Close()
	})
	return counts, err
}
