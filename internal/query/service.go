//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package query

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// Querier is the read side of db.DB. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Result is one page of the sales view.
type Result struct {
	Rows       []sales.Row
	KPI        sales.KPI
	Pagination sales.Pagination
}

// Summary is the aggregate over every row matching a filter.
type Summary struct {
	Count int64
	KPI   sales.KPI
}

// Service runs sales queries.
type Service struct {
	db Querier
}

// NewService creates a new sales query service.
func NewService(db Querier) *Service {
	return &Service{db: db}
}

const rowColumns = `
SELECT s.transaction_id, s.date, c.gender, c.age, c.customer_id,
       c.customer_name, c.phone, s.final_amount::float8, s.quantity,
       s.payment_method, c.region, p.product_id, p.product_name,
       p.category, p.tags`

const summaryColumns = `
SELECT COUNT(*),
       COALESCE(SUM(s.quantity), 0),
       COALESCE(SUM(s.final_amount), 0)::text,
       COALESCE(SUM(s.total_amount), 0)::text`

// GetSales returns the requested page of f together with the summary of
// every matching row. The page and summary queries run concurrently; if
// either fails the other is cancelled and the first error is returned.
func (s *Service) GetSales(ctx context.Context, f filter.Filter) (*Result, error) {
	pred := BuildPredicate(f)

	var rows []sales.Row
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.page(gctx, pred, f)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.summary(gctx, pred)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Debug().
		Int("page", f.Page).
		Int("limit", f.Limit).
		Int("rows", len(rows)).
		Int64("total", summary.Count).
		Msg("Fetched sales page")

	return &Result{
		Rows:       rows,
		KPI:        summary.KPI,
		Pagination: sales.NewPagination(f.Page, f.Limit, summary.Count),
	}, nil
}

// Summarize returns the aggregate over every row matching f.
func (s *Service) Summarize(ctx context.Context, f filter.Filter) (Summary, error) {
	return s.summary(ctx, BuildPredicate(f))
}

// Export calls fn for every row matching f in page order, stopping after
// maxRows rows when maxRows is positive. It returns the number of rows
// delivered.
func (s *Service) Export(ctx context.Context, f filter.Filter, maxRows int, fn func(sales.Row) error) (int, error) {
	pred := BuildPredicate(f)
	sql := rowColumns + fromClause + "\n" + pred.Where + "\n" + OrderBy(f)
	args := slices.Clone(pred.Args)
	if maxRows > 0 {
		args = append(args, maxRows)
		sql += "\nLIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query sales export: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return n, fmt.Errorf("failed to scan sales row: %w", err)
		}
		if err := fn(row); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("failed to read sales export: %w", err)
	}
	return n, nil
}

func (s *Service) page(ctx context.Context, pred Predicate, f filter.Filter) ([]sales.Row, error) {
	args := append(slices.Clone(pred.Args), f.Limit, f.Offset())
	sql := rowColumns + fromClause + "\n" + pred.Where + "\n" + OrderBy(f) +
		fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales page: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.Row, error) {
		return scanRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sales page: %w", err)
	}
	if result == nil {
		result = []sales.Row{}
	}
	return result, nil
}

func (s *Service) summary(ctx context.Context, pred Predicate) (Summary, error) {
	var count, units int64
	var finalText, totalText string
	sql := summaryColumns + fromClause + "\n" + pred.Where
	if err := s.db.QueryRow(ctx, sql, pred.Args...).Scan(&count, &units, &finalText, &totalText); err != nil {
		return Summary{}, fmt.Errorf("failed to query sales summary: %w", err)
	}

	kpi, err := ComputeKPI(units, finalText, totalText)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Count: count, KPI: kpi}, nil
}

func scanRow(row pgx.Row) (sales.Row, error) {
	var r sales.Row
	err := row.Scan(
		&r.TransactionID, &r.Date, &r.Gender, &r.Age, &r.CustomerID,
		&r.CustomerName, &r.CustomerPhone, &r.TotalAmount, &r.Quantity,
		&r.PaymentMethod, &r.Region, &r.ProductID, &r.ProductName,
		&r.Category, &r.Tags,
	)
	return r, err
}

// ComputeKPI builds the KPI from exact decimal sums. The discount is the
// difference between pre- and post-discount totals and never negative.
func ComputeKPI(units int64, finalSum, totalSum string) (sales.KPI, error) {
	final, err := decimal.NewFromString(finalSum)
	if err != nil {
		return sales.KPI{}, fmt.Errorf("invalid final amount sum %q: %w", finalSum, err)
	}
	total, err := decimal.NewFromString(totalSum)
	if err != nil {
		return sales.KPI{}, fmt.Errorf("invalid total amount sum %q: %w", totalSum, err)
	}

	discount := total.Sub(final)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return sales.KPI{
		TotalUnitsSold: units,
		TotalAmount:    final.InexactFloat64(),
		TotalDiscount:  discount.InexactFloat64(),
	}, nil
}
