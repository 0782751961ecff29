//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

// Schema SQL for the sales dataset.
const createSchemaSQL = `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS customers (
    customer_id    TEXT PRIMARY KEY,
    customer_name  TEXT NOT NULL,
    phone          TEXT,
    gender         TEXT,
    age            INTEGER,
    region         TEXT,
    customer_type  TEXT
);

CREATE TABLE IF NOT EXISTS products (
    product_id    TEXT PRIMARY KEY,
    product_name  TEXT,
    brand         TEXT,
    category      TEXT,
    tags          TEXT
);

CREATE TABLE IF NOT EXISTS sales (
    transaction_id       BIGINT PRIMARY KEY,
    date                 TIMESTAMP NOT NULL,
    customer_id          TEXT NOT NULL REFERENCES customers (customer_id),
    product_id           TEXT NOT NULL REFERENCES products (product_id),
    quantity             INTEGER NOT NULL DEFAULT 0,
    price_per_unit       NUMERIC(12,2) NOT NULL DEFAULT 0,
    discount_percentage  NUMERIC(12,2) NOT NULL DEFAULT 0,
    total_amount         NUMERIC(12,2) NOT NULL DEFAULT 0,
    final_amount         NUMERIC(12,2) NOT NULL DEFAULT 0,
    payment_method       TEXT,
    order_status         TEXT,
    delivery_type        TEXT,
    store_id             TEXT,
    store_location       TEXT,
    salesperson_id       TEXT,
    employee_name        TEXT
);

-- Substring search on name, phone and tags
CREATE INDEX IF NOT EXISTS idx_customers_name_trgm ON customers USING gin (customer_name gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_customers_phone_trgm ON customers USING gin (phone gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_products_tags_trgm ON products USING gin (tags gin_trgm_ops);

-- Equality and range filters
CREATE INDEX IF NOT EXISTS idx_customers_region ON customers (region);
CREATE INDEX IF NOT EXISTS idx_customers_gender ON customers (gender);
CREATE INDEX IF NOT EXISTS idx_customers_age ON customers (age);
CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);
CREATE INDEX IF NOT EXISTS idx_sales_final_amount ON sales (final_amount);
CREATE INDEX IF NOT EXISTS idx_sales_quantity ON sales (quantity);
CREATE INDEX IF NOT EXISTS idx_sales_payment_method ON sales (payment_method);
CREATE INDEX IF NOT EXISTS idx_sales_customer_id ON sales (customer_id);
CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales (product_id);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS sales CASCADE;
DROP TABLE IF EXISTS products CASCADE;
DROP TABLE IF EXISTS customers CASCADE;
`

// Tables lists the dataset tables in dependency order.
var Tables = []string{"customers", "products", "sales"}

// CreateSchema creates the tables, extension and indexes.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logging.Debug().Strs("tables", Tables).Msg("Created schema")
	return nil
}

// DropSchema drops the dataset tables and the metadata table.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	if err := DropMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to drop metadata: %w", err)
	}
	logging.Debug().Strs("tables", Tables).Msg("Dropped schema")
	return nil
}

// SchemaExists reports whether the sales table exists.
func SchemaExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = 'sales'
        )
    `).Scan(&exists)
	return exists, err
}

// TableCounts returns the row count of each dataset table.
func TableCounts(ctx context.Context, pool *pgxpool.Pool) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
