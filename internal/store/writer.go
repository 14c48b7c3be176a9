package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Writer inserts transformed batches into their destination tables.
type Writer struct {
	db TxBeginner
}

func NewWriter(db TxBeginner) *Writer {
	return &Writer{db: db}
}

// InsertBatch writes every row of the batch in a single transaction.
//
// The collection-end timestamp is read from the database clock once, so all
// rows of a run share an identical value regardless of how long the insert
// takes. Any row failure rolls the whole batch back; partial writes never
// become visible.
func (w *Writer) InsertBatch(ctx context.Context, b Batch, run RunHeader) error {
	if len(b.Rows) == 0 {
		return fmt.Errorf("insert into %s: empty batch", b.Table)
	}
	for i, row := range b.Rows {
		if len(row) != len(b.Columns) {
			return fmt.Errorf("insert into %s: row %d has %d values, want %d", b.Table, i, len(row), len(b.Columns))
		}
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var collectionEnd time.Time
	if err := tx.QueryRow(ctx, "SELECT now()").Scan(&collectionEnd); err != nil {
		return fmt.Errorf("read collection end timestamp: %w", err)
	}

	sql := buildInsert(b.Table, b.Columns)

	batch := &pgx.Batch{}
	for _, row := range b.Rows {
		args := make([]any, 0, len(RunColumns)+len(row))
		args = append(args, run.RunID, run.IsTestData, run.CollectionStart, collectionEnd)
		args = append(args, row...)
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(b.Rows); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert into %s: row %d: %w", b.Table, i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert into %s: %w", b.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert into %s: %w", b.Table, err)
	}

	return nil
}

func buildInsert(table string, columns []string) string {
	all := make([]string, 0, len(RunColumns)+len(columns))
	all = append(all, RunColumns...)
	all = append(all, columns...)

	placeholders := make([]string, len(all))
	for i := range all {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(all, ", "), strings.Join(placeholders, ", "))
}
