package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB hands out a single fake transaction.
type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

// queuedStmt is one statement queued on a pgx.Batch.
type queuedStmt struct {
	sql  string
	args []any
}

// fakeTx records every statement and lets tests inject failures by SQL
// fragment or batch position.
type fakeTx struct {
	execs   []string
	queued  []queuedStmt
	execErr func(sql string) error
	rowScan func(sql string, dest []any) error
	// batchErrAt injects an error on the Nth batch Exec (-1 disables).
	batchErrAt int
	batchErr   error

	committed  bool
	rolledBack bool
}

func newFakeTx() *fakeTx {
	return &fakeTx{batchErrAt: -1}
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}
func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	if t.execErr != nil {
		if err := t.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: func(dest []any) error {
		if t.rowScan == nil {
			return errors.New("unexpected QueryRow: " + sql)
		}
		return t.rowScan(sql, dest)
	}}
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query: " + sql)
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	for _, qq := range b.QueuedQueries {
		t.queued = append(t.queued, queuedStmt{sql: qq.SQL, args: qq.Arguments})
	}
	return &fakeBatchResults{tx: t}
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("unexpected CopyFrom")
}

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("unexpected Prepare")
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

type fakeRow struct {
	scan func(dest []any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest) }

type fakeBatchResults struct {
	tx   *fakeTx
	next int
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := b.next
	b.next++
	if b.tx.batchErrAt >= 0 && i == b.tx.batchErrAt {
		return pgconn.CommandTag{}, b.tx.batchErr
	}
	return pgconn.CommandTag{}, nil
}

func (b *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("unexpected batch Query")
}

func (b *fakeBatchResults) QueryRow() pgx.Row {
	return fakeRow{scan: func([]any) error { return errors.New("unexpected batch QueryRow") }}
}

func (b *fakeBatchResults) Close() error { return nil }

// fakeQuerier implements DBTX for single-row lookups.
type fakeQuerier struct {
	queryRow func(sql string, args []any) pgx.Row
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected Exec")
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRow(sql, args)
}
