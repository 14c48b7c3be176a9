package scenario

import (
	"context"
	"errors"
	"fmt"

	"wbloader/internal/runlog"
	"wbloader/internal/store"
)

// Pipeline executes one scenario run end to end.
type Pipeline struct {
	def         Definition
	settings    store.LoadParams
	fetcher     Fetcher
	transformer Transformer
	repo        Repository
}

// Resolve prepares the named scenario for execution. An unknown name or a
// failed capability construction returns a *LoadError; no network or data
// I/O has happened yet, so the caller can abort cheaply.
func Resolve(name string, env Env) (*Pipeline, error) {
	def, ok := Get(name)
	if !ok {
		return nil, &LoadError{
			Scenario: name,
			Err:      fmt.Errorf("unknown scenario, registered: %v", Names()),
		}
	}

	fetcher, err := def.NewFetcher(env)
	if err != nil {
		return nil, &LoadError{Scenario: name, Err: fmt.Errorf("fetcher: %w", err)}
	}
	transformer, err := def.NewTransformer(env)
	if err != nil {
		return nil, &LoadError{Scenario: name, Err: fmt.Errorf("transformer: %w", err)}
	}
	repo, err := def.NewRepository(env)
	if err != nil {
		return nil, &LoadError{Scenario: name, Err: fmt.Errorf("repository: %w", err)}
	}

	return &Pipeline{
		def:         def,
		settings:    env.Settings,
		fetcher:     fetcher,
		transformer: transformer,
		repo:        repo,
	}, nil
}

// Table returns the fully qualified destination table.
func (p *Pipeline) Table() string { return p.def.Table }

// Run executes extract, transform and insert in order, recording an event
// for each stage. The first failing stage aborts the run and its error is
// returned unchanged for the caller to classify.
func (p *Pipeline) Run(ctx context.Context, sink runlog.Sink, run store.RunHeader) error {
	records, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.emit(ctx, sink, runlog.ExtractDataError, runlog.StatusError,
			fmt.Sprintf("extract failed: %v", err))
		return err
	}
	p.emit(ctx, sink, runlog.ExtractDataSuccess, runlog.StatusSuccess,
		fmt.Sprintf("extracted %d records", len(records)))

	batch, err := p.transformer.Process(records)
	if err != nil {
		code := runlog.TransformDataError
		var procErr *DataProcessingError
		if errors.As(err, &procErr) {
			code = runlog.ValidateDataError
		}
		p.emit(ctx, sink, code, runlog.StatusError,
			fmt.Sprintf("transform failed: %v", err))
		return err
	}
	p.emit(ctx, sink, runlog.TransformDataSuccess, runlog.StatusSuccess,
		fmt.Sprintf("transformed %d rows", len(batch.Rows)))

	if err := p.repo.InsertBatch(ctx, batch, run); err != nil {
		p.emit(ctx, sink, runlog.InsertDataError, runlog.StatusError,
			fmt.Sprintf("insert failed: %v", err))
		return err
	}
	p.emit(ctx, sink, runlog.InsertDataSuccess, runlog.StatusSuccess,
		fmt.Sprintf("inserted %d rows into %s", len(batch.Rows), p.def.Table))

	return nil
}

func (p *Pipeline) emit(ctx context.Context, sink runlog.Sink, code runlog.Code, status runlog.Status, msg string) {
	sink.Emit(ctx, runlog.Event{
		Code:             code,
		Status:           status,
		Message:          msg,
		LoadParamsID:     p.settings.ID,
		DestinationTable: p.def.Table,
	})
}
