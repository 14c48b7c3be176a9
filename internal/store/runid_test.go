package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIssueRunID_Success(t *testing.T) {
	tx := newFakeTx()
	tx.rowScan = func(sql string, dest []any) error {
		if !strings.Contains(sql, "nextval") {
			t.Fatalf("unexpected QueryRow sql: %s", sql)
		}
		*dest[0].(*int64) = 42
		return nil
	}
	db := &fakeDB{tx: tx}

	id, err := IssueRunID(context.Background(), db, 5*time.Second)
	if err != nil {
		t.Fatalf("IssueRunID() error = %v", err)
	}
	if id != 42 {
		t.Errorf("IssueRunID() = %d, want 42", id)
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}

	// Lock wait must be bounded before the advisory lock is requested
	var sawTimeout, sawLock bool
	for _, sql := range tx.execs {
		if strings.Contains(sql, "SET LOCAL lock_timeout = '5000ms'") {
			sawTimeout = true
			if sawLock {
				t.Error("lock_timeout set after advisory lock was requested")
			}
		}
		if strings.Contains(sql, "pg_advisory_xact_lock") {
			sawLock = true
		}
	}
	if !sawTimeout {
		t.Errorf("SET LOCAL lock_timeout not executed, got %v", tx.execs)
	}
	if !sawLock {
		t.Errorf("pg_advisory_xact_lock not executed, got %v", tx.execs)
	}
}

func TestIssueRunID_LockTimeout(t *testing.T) {
	tx := newFakeTx()
	tx.execErr = func(sql string) error {
		if strings.Contains(sql, "pg_advisory_xact_lock") {
			return &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}
		}
		return nil
	}
	db := &fakeDB{tx: tx}

	_, err := IssueRunID(context.Background(), db, time.Second)
	var issueErr *IDIssuanceError
	if !errors.As(err, &issueErr) {
		t.Fatalf("error type = %T, want *IDIssuanceError", err)
	}
	if issueErr.Reason != ReasonLockTimeout {
		t.Errorf("Reason = %q, want %q", issueErr.Reason, ReasonLockTimeout)
	}
	if tx.committed {
		t.Error("transaction must not commit on failure")
	}
	if !tx.rolledBack {
		t.Error("transaction was not rolled back")
	}
}

func TestIssueRunID_Deadlock(t *testing.T) {
	tx := newFakeTx()
	tx.execErr = func(sql string) error {
		if strings.Contains(sql, "pg_advisory_xact_lock") {
			return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
		}
		return nil
	}
	db := &fakeDB{tx: tx}

	_, err := IssueRunID(context.Background(), db, time.Second)
	var issueErr *IDIssuanceError
	if !errors.As(err, &issueErr) {
		t.Fatalf("error type = %T, want *IDIssuanceError", err)
	}
	if issueErr.Reason != ReasonDeadlock {
		t.Errorf("Reason = %q, want %q", issueErr.Reason, ReasonDeadlock)
	}
}

func TestIssueRunID_OtherError(t *testing.T) {
	db := &fakeDB{beginErr: errors.New("connection refused")}

	_, err := IssueRunID(context.Background(), db, time.Second)
	var issueErr *IDIssuanceError
	if !errors.As(err, &issueErr) {
		t.Fatalf("error type = %T, want *IDIssuanceError", err)
	}
	if issueErr.Reason != ReasonOther {
		t.Errorf("Reason = %q, want %q", issueErr.Reason, ReasonOther)
	}
}
