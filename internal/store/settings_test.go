package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func wb17Defaults() LoadParams {
	return LoadParams{
		ID:             "wb17_ProductsReport",
		EndpointURL:    "https://content-api.wildberries.ru/content/v2/get/cards/list",
		Limit:          100,
		Timeout:        30 * time.Second,
		MaxRetries:     5,
		BackoffFactor:  0.3,
		RetryStatuses:  []int{429, 500, 502, 503, 504},
		AllowedMethods: []string{"GET", "POST"},
	}
}

func TestResolve_NoRowKeepsDefaults(t *testing.T) {
	db := &fakeQuerier{queryRow: func(sql string, args []any) pgx.Row {
		return fakeRow{scan: func([]any) error { return pgx.ErrNoRows }}
	}}

	params, found, err := NewLoadParamsStore(db).Resolve(context.Background(), "wb17", true, wb17Defaults())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
	if params.Limit != 100 {
		t.Errorf("Limit = %d, want default 100", params.Limit)
	}
	if !params.IsTestData {
		t.Error("IsTestData = false, want true")
	}
}

func TestResolve_RowOverlaysDefaults(t *testing.T) {
	db := &fakeQuerier{queryRow: func(sql string, args []any) pgx.Row {
		if len(args) != 2 || args[0] != "wb17" || args[1] != false {
			t.Fatalf("query args = %v, want [wb17 false]", args)
		}
		return fakeRow{scan: func(dest []any) error {
			*dest[0].(*pgtype.Text) = pgtype.Text{String: "wb17_custom", Valid: true}
			*dest[1].(*pgtype.Text) = pgtype.Text{Valid: false}
			*dest[2].(*pgtype.Int4) = pgtype.Int4{Int32: 50, Valid: true}
			*dest[3].(*pgtype.Int4) = pgtype.Int4{Valid: false}
			*dest[4].(*pgtype.Int4) = pgtype.Int4{Int32: 90, Valid: true}
			*dest[5].(*pgtype.Int4) = pgtype.Int4{Valid: false}
			*dest[6].(*pgtype.Float8) = pgtype.Float8{Valid: false}
			return nil
		}}
	}}

	params, found, err := NewLoadParamsStore(db).Resolve(context.Background(), "wb17", false, wb17Defaults())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !found {
		t.Error("found = false, want true")
	}
	if params.ID != "wb17_custom" {
		t.Errorf("ID = %q, want override", params.ID)
	}
	if params.Limit != 50 {
		t.Errorf("Limit = %d, want 50 from row", params.Limit)
	}
	if params.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s from row", params.Timeout)
	}
	// Null columns keep defaults
	if params.EndpointURL != wb17Defaults().EndpointURL {
		t.Errorf("EndpointURL = %q, want default", params.EndpointURL)
	}
	if params.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want default 5", params.MaxRetries)
	}
	if params.BackoffFactor != 0.3 {
		t.Errorf("BackoffFactor = %v, want default 0.3", params.BackoffFactor)
	}
}

func TestApplyArgs_Overrides(t *testing.T) {
	params := wb17Defaults()
	err := params.ApplyArgs(map[string]string{
		"limit":   "25",
		"timeout": "10s",
		"url":     "https://example.test/cards",
	})
	if err != nil {
		t.Fatalf("ApplyArgs() error = %v", err)
	}
	if params.Limit != 25 {
		t.Errorf("Limit = %d, want 25", params.Limit)
	}
	if params.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", params.Timeout)
	}
	if params.EndpointURL != "https://example.test/cards" {
		t.Errorf("EndpointURL = %q", params.EndpointURL)
	}
}

func TestApplyArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
	}{
		{"unknown key", map[string]string{"pages": "3"}},
		{"non-numeric limit", map[string]string{"limit": "many"}},
		{"negative limit", map[string]string{"limit": "-1"}},
		{"bad timeout", map[string]string{"timeout": "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := wb17Defaults()
			if err := params.ApplyArgs(tt.args); err == nil {
				t.Errorf("ApplyArgs(%v) expected error", tt.args)
			}
		})
	}
}
