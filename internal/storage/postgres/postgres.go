// Package postgres implements the storage driver for PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryer is the subset of pgxpool.Pool the driver needs.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StorageDriver represents the storage implementation for PostgreSQL.
type StorageDriver struct {
	conn Queryer
}

// NewStorageDriver creates a new StorageDriver
func NewStorageDriver(conn Queryer) *StorageDriver {
	return &StorageDriver{
		conn: conn,
	}
}
