package jobflow

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// SQLExecutor is the opaque storage handle the Queue issues plan text
// against. *sql.DB satisfies it directly. It must be safe for concurrent
// use; the Queue never serializes access to it itself.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// NewMySQLExecutor adapts a *sql.DB into an SQLExecutor.
func NewMySQLExecutor(db *sql.DB) SQLExecutor {
	return db
}

// IDFactory generates job ids.
type IDFactory func() string

// UUIDv4Factory returns an IDFactory producing random (v4) UUIDs.
func UUIDv4Factory() IDFactory {
	return func() string {
		return uuid.New().String()
	}
}

// UUIDv1Factory returns an IDFactory producing time-ordered (v1) UUIDs.
func UUIDv1Factory() IDFactory {
	return func() string {
		id, err := uuid.NewUUID()
		if err != nil {
			// NewUUID only fails if the host cannot provide a MAC address or
			// clock sequence; fall back to a v4 id rather than panic.
			return uuid.New().String()
		}
		return id.String()
	}
}
