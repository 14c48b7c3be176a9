package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// LoadParams are the effective extraction settings for one scenario run.
// Scenario packages provide the defaults; a persisted settings row and
// caller-supplied arguments can override individual fields.
type LoadParams struct {
	// ID identifies the parameter set in run-log events.
	ID string

	// EndpointURL is the remote API endpoint to page through.
	EndpointURL string

	// Limit is the page size requested from the API.
	Limit int

	// Offset is the starting offset for offset-paginated scenarios.
	Offset int

	// Timeout bounds a single API request.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first request.
	MaxRetries int

	// BackoffFactor scales the exponential retry delay in seconds.
	BackoffFactor float64

	// RetryStatuses are the HTTP status codes that trigger a retry.
	RetryStatuses []int

	// AllowedMethods are the HTTP methods retries are permitted for.
	AllowedMethods []string

	// IsTestData marks every inserted row as test data.
	IsTestData bool
}

// LoadParamsStore reads persisted extraction settings.
type LoadParamsStore struct {
	db DBTX
}

func NewLoadParamsStore(db DBTX) *LoadParamsStore {
	return &LoadParamsStore{db: db}
}

const loadParamsQuery = `
SELECT load_params_id, endpoint_url, page_limit, page_offset,
       timeout_seconds, max_retries, backoff_factor
FROM cfg.wb_api_load_params
WHERE data_load_scenario = $1 AND is_test_data = $2`

// Resolve returns the effective settings for a scenario: the persisted row
// overlaid on the given defaults. The boolean reports whether a row was
// found; absence is not an error, the defaults apply as-is.
func (s *LoadParamsStore) Resolve(ctx context.Context, scenario string, isTestData bool, defaults LoadParams) (LoadParams, bool, error) {
	params := defaults
	params.IsTestData = isTestData

	var (
		id             pgtype.Text
		endpointURL    pgtype.Text
		limit          pgtype.Int4
		offset         pgtype.Int4
		timeoutSeconds pgtype.Int4
		maxRetries     pgtype.Int4
		backoffFactor  pgtype.Float8
	)

	err := s.db.QueryRow(ctx, loadParamsQuery, scenario, isTestData).Scan(
		&id, &endpointURL, &limit, &offset, &timeoutSeconds, &maxRetries, &backoffFactor,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return params, false, nil
	}
	if err != nil {
		return params, false, fmt.Errorf("load params for %s: %w", scenario, err)
	}

	if id.Valid {
		params.ID = id.String
	}
	if endpointURL.Valid {
		params.EndpointURL = endpointURL.String
	}
	if limit.Valid {
		params.Limit = int(limit.Int32)
	}
	if offset.Valid {
		params.Offset = int(offset.Int32)
	}
	if timeoutSeconds.Valid {
		params.Timeout = time.Duration(timeoutSeconds.Int32) * time.Second
	}
	if maxRetries.Valid {
		params.MaxRetries = int(maxRetries.Int32)
	}
	if backoffFactor.Valid {
		params.BackoffFactor = backoffFactor.Float64
	}

	return params, true, nil
}

// ApplyArgs overrides individual settings from caller-supplied key=value
// arguments. Recognized keys: url, limit, offset, timeout, retries.
func (p *LoadParams) ApplyArgs(args map[string]string) error {
	for key, value := range args {
		switch key {
		case "url":
			p.EndpointURL = value
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("limit must be a positive integer, got %q", value)
			}
			p.Limit = n
		case "offset":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("offset must be a non-negative integer, got %q", value)
			}
			p.Offset = n
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return fmt.Errorf("timeout must be a positive duration, got %q", value)
			}
			p.Timeout = d
		case "retries":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("retries must be a non-negative integer, got %q", value)
			}
			p.MaxRetries = n
		default:
			return fmt.Errorf("unknown scenario argument %q", key)
		}
	}
	return nil
}
