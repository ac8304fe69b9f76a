package repositories

import (
	"context"
	"errors"

	"rentflow/internal/common"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories use. pgxmock pools satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadErr(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError(entity, id)
	}
	return common.NewStoreError("load "+entity, err)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return common.NewStoreError(op, err)
}

// emptyIfNil keeps NOT NULL array columns from receiving NULL.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
