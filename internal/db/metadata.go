//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/pkg/version"
)

const metadataTable = "salesdash_metadata"

// Metadata keys.
const (
	MetaVersion          = "version"
	MetaInitializedAt    = "initialized_at"
	MetaLastIngestFile   = "last_ingest_file"
	MetaLastIngestAt     = "last_ingest_at"
	MetaLastIngestRows   = "last_ingest_rows"
	MetaLastIngestFailed = "last_ingest_failed_batches"
)

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS salesdash_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// IngestRecord summarises one ingestion run.
type IngestRecord struct {
	File          string
	RowsInserted  int64
	FailedBatches int
}

// SaveMetadata records schema initialisation in the metadata table.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	return saveMetadata(ctx, pool, map[string]string{
		MetaVersion:       version.Short(),
		MetaInitializedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// SaveIngestMetadata records the outcome of an ingestion run.
func SaveIngestMetadata(ctx context.Context, pool *pgxpool.Pool, rec IngestRecord) error {
	if err := saveMetadata(ctx, pool, map[string]string{
		MetaLastIngestFile:   rec.File,
		MetaLastIngestAt:     time.Now().UTC().Format(time.RFC3339),
		MetaLastIngestRows:   strconv.FormatInt(rec.RowsInserted, 10),
		MetaLastIngestFailed: strconv.Itoa(rec.FailedBatches),
	}); err != nil {
		return err
	}

	logging.Debug().
		Str("file", rec.File).
		Int64("rows", rec.RowsInserted).
		Int("failed_batches", rec.FailedBatches).
		Msg("Saved ingest metadata")
	return nil
}

func saveMetadata(ctx context.Context, pool *pgxpool.Pool, metadata map[string]string) error {
	// Create table if it doesn't exist
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO salesdash_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM salesdash_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM salesdash_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
