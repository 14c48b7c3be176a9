package runlog

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"wbloader/internal/store"
)

// maxMessageLen matches the width of the event_message column.
const maxMessageLen = 4000

// Sink records lifecycle events.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// DBSink writes events to rawlog.loader_log and mirrors them to the
// structured log. Emit never fails: if the insert errors, the event is
// still visible in the diagnostic stream and the run continues.
type DBSink struct {
	db       store.DBTX
	logger   *slog.Logger
	source   string
	scenario string
	runID    int64
}

func NewDBSink(db store.DBTX, logger *slog.Logger, source, scenario string, runID int64) *DBSink {
	return &DBSink{db: db, logger: logger, source: source, scenario: scenario, runID: runID}
}

const insertEvent = `
INSERT INTO rawlog.loader_log
  (event_code, event_source, event_message, event_status,
   load_params_id, destination_table, data_load_scenario, lpid)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Emit records one event. Errors from persistence are logged and swallowed.
func (s *DBSink) Emit(ctx context.Context, e Event) {
	msg := truncate(e.Message, maxMessageLen)

	attrs := []any{
		"event_code", string(e.Code),
		"event_status", string(e.Status),
	}
	if e.LoadParamsID != "" {
		attrs = append(attrs, "load_params_id", e.LoadParamsID)
	}
	if e.DestinationTable != "" {
		attrs = append(attrs, "destination_table", e.DestinationTable)
	}
	if e.Status == StatusError {
		s.logger.Error(msg, attrs...)
	} else {
		s.logger.Info(msg, attrs...)
	}

	_, err := s.db.Exec(ctx, insertEvent,
		string(e.Code),
		s.source,
		msg,
		string(e.Status),
		toPgText(e.LoadParamsID),
		toPgText(e.DestinationTable),
		s.scenario,
		s.runID,
	)
	if err != nil {
		s.logger.Error("event persistence failed",
			"event_code", string(e.Code),
			"error", err,
		)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
