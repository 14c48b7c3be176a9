package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// runIDLockKey serializes run id issuance across loader processes.
// All loaders writing to the same database must use the same key.
const runIDLockKey = 774217

// IssuanceReason classifies why a run id could not be issued.
type IssuanceReason string

const (
	ReasonLockTimeout IssuanceReason = "lock_timeout"
	ReasonDeadlock    IssuanceReason = "deadlock"
	ReasonOther       IssuanceReason = "other"
)

// IDIssuanceError reports a failure to obtain a run id.
type IDIssuanceError struct {
	Reason IssuanceReason
	Err    error
}

func (e *IDIssuanceError) Error() string {
	return fmt.Sprintf("run id issuance failed (%s): %v", e.Reason, e.Err)
}

func (e *IDIssuanceError) Unwrap() error { return e.Err }

// IssueRunID allocates the next run id from a shared database sequence.
//
// Issuance is serialized with an advisory lock so that concurrent loader
// processes receive strictly distinct ids even when the sequence has to be
// created first. The lock wait is bounded by lockTimeout; an expired wait
// is reported as ReasonLockTimeout so the caller can distinguish contention
// from real database failures.
func IssueRunID(ctx context.Context, db TxBeginner, lockTimeout time.Duration) (int64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, &IDIssuanceError{Reason: ReasonOther, Err: err}
	}
	defer tx.Rollback(ctx)

	// SET LOCAL does not accept bind parameters; the value is derived from
	// a duration, never from user input.
	setTimeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, setTimeout); err != nil {
		return 0, classifyIssuance(err)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", runIDLockKey); err != nil {
		return 0, classifyIssuance(err)
	}

	if _, err := tx.Exec(ctx, "CREATE SEQUENCE IF NOT EXISTS cfg.run_id_seq"); err != nil {
		return 0, classifyIssuance(err)
	}

	var runID int64
	if err := tx.QueryRow(ctx, "SELECT nextval('cfg.run_id_seq')").Scan(&runID); err != nil {
		return 0, classifyIssuance(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classifyIssuance(err)
	}

	return runID, nil
}

func classifyIssuance(err error) *IDIssuanceError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03": // lock_not_available
			return &IDIssuanceError{Reason: ReasonLockTimeout, Err: err}
		case "40P01": // deadlock_detected
			return &IDIssuanceError{Reason: ReasonDeadlock, Err: err}
		}
	}
	return &IDIssuanceError{Reason: ReasonOther, Err: err}
}
