package db

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// Querier is the slice of pgx the repositories work against. Keeping them on
// this interface instead of the concrete pool keeps transactions out of
// reach: every repository write is a single statement, and the one real race
// (two resolutions discovering the same domain) is handled with
// insert-or-ignore plus an authoritative re-read, not locking.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
