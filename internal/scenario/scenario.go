// Package scenario defines the data-load scenarios the loader can run and
// the pipeline that executes one of them: extract from the remote API,
// transform and validate, insert into the destination table.
//
// Scenario packages register a Definition from init(); the main package
// selects one by name at startup.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"wbloader/internal/store"
)

// Fetcher pulls the complete raw record set for one run, paging through the
// remote API until exhaustion.
type Fetcher interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

// Transformer validates raw records and projects them into an insertable
// batch. Implementations must reject an empty input.
type Transformer interface {
	Process(records []json.RawMessage) (store.Batch, error)
}

// Repository persists a transformed batch under one run header.
type Repository interface {
	InsertBatch(ctx context.Context, b store.Batch, run store.RunHeader) error
}

// Env carries the run-scoped collaborators scenario constructors need.
type Env struct {
	DB       store.TxBeginner
	Settings store.LoadParams
	APIKey   string
	Logger   *slog.Logger
}

// Definition describes one registered scenario.
type Definition struct {
	// Name is the selector passed on the command line, e.g. "wb17".
	Name        string
	Description string

	// Table is the fully qualified destination table.
	Table string

	// Defaults are the extraction settings used when no row exists in
	// cfg.wb_api_load_params and no caller argument overrides them.
	Defaults store.LoadParams

	NewFetcher     func(Env) (Fetcher, error)
	NewTransformer func(Env) (Transformer, error)
	NewRepository  func(Env) (Repository, error)
}

// LoadError reports that a scenario could not be prepared for execution.
// It is always raised before any network or data I/O.
type LoadError struct {
	Scenario string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scenario %q could not be loaded: %v", e.Scenario, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DataProcessingError reports a record that failed validation or could not
// be projected into the destination tuple. Field names the offending path.
type DataProcessingError struct {
	Field   string
	Message string
}

func (e *DataProcessingError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
