// Package store contains the PostgreSQL access layer: connection pool setup,
// run id issuance, load-parameter retrieval and the transactional batch writer.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wbloader/internal/config"
)

// DBTX is the interface for database operations.
// Both pgxpool.Pool and pgx.Tx satisfy this interface.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunColumns are the bookkeeping columns prepended to every inserted row,
// in insert order.
var RunColumns = []string{"lpid", "is_test_data", "collection_start_dttm", "collection_end_dttm"}

// Batch is a set of rows bound for one destination table.
// Columns lists the scenario-specific column names; every row in Rows must
// have exactly len(Columns) values in the same order.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// RunHeader carries the per-run values shared by every row of a batch.
type RunHeader struct {
	RunID           int64
	IsTestData      bool
	CollectionStart time.Time
}

// NewPool creates a connection pool from the database configuration and
// verifies connectivity with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	// Bound every statement server-side; a hung query must not outlive the
	// scheduled run window.
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.QueryTimeout.Milliseconds())

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
