package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// CheckSchema verifies that the given tables exist and returns the names of
// the missing ones. Callers treat missing objects as a warning; the insert
// itself will fail with a precise error if a required table is absent.
func CheckSchema(ctx context.Context, db DBTX, tables []string) ([]string, error) {
	var missing []string
	for _, table := range tables {
		var reg pgtype.Text
		if err := db.QueryRow(ctx, "SELECT to_regclass($1)::text", table).Scan(&reg); err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		if !reg.Valid {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
