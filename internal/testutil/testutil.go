//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salesdash/internal/db"
)

const (
	// DefaultTestConnString is used when SALESDASH_TEST_CONN is not set.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "salesdash_test_"
)

// ConnString returns the admin connection string for integration tests.
func ConnString() string {
	if s := os.Getenv("SALESDASH_TEST_CONN"); s != "" {
		return s
	}
	return DefaultTestConnString
}

// adminPool connects to the admin database, skipping the test when the
// server cannot be reached.
func adminPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(ctx, ConnString())
	if err != nil {
		t.Skipf("PostgreSQL not available, skipping integration test: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("PostgreSQL not available, skipping integration test: %v", err)
	}
	return pool
}

func randomName(t *testing.T, name string) string {
	t.Helper()

	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	return TestDBPrefix + name + "_" + hex.EncodeToString(b)
}

// NewTestDB creates a fresh database and returns a pool connected to it.
// The database is dropped when the test finishes, unless the test failed,
// in which case it is kept for diagnostics. Tests are skipped when
// PostgreSQL or the pg_trgm extension is unavailable.
func NewTestDB(t *testing.T, name string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin := adminPool(t, ctx)
	defer admin.Close()

	if !hasTrgm(ctx, admin) {
		t.Skip("pg_trgm extension not available, skipping test")
	}

	dbName := randomName(t, name)
	ident := pgx.Identifier{dbName}.Sanitize()
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(ConnString())
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cfg.ConnConfig.Database = dbName

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", dbName)
			return
		}
		dropDB(t, dbName)
	})

	return pool
}

// NewSchemaDB is NewTestDB with the sales schema already created.
func NewSchemaDB(t *testing.T, name string) *pgxpool.Pool {
	t.Helper()

	pool := NewTestDB(t, name)
	if err := db.CreateSchema(context.Background(), pool); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}
	return pool
}

func dropDB(t *testing.T, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, ConnString())
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer admin.Close()

	// Terminate connections to the database
	_, _ = admin.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, dbName)

	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

func hasTrgm(ctx context.Context, pool *pgxpool.Pool) bool {
	var available bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM pg_available_extensions WHERE name = 'pg_trgm'
        )
    `).Scan(&available)
	return err == nil && available
}
