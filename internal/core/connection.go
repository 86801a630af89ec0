// File: internal/core/connection.go
package core

import (
	"context"
	"database/sql"
	"errors"
)

// Conn is the single connection a session runs its statements on.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// Acquire reserves one connection from the pool.
func Acquire(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	if db == nil {
		return nil, errors.New("nil *sql.DB")
	}
	return db.Conn(ctx)
}

// Release returns the connection to the pool.
func Release(conn Conn) error {
	if conn == nil {
		return nil
	}
	err := conn.Close()
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}
