package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/entmap/internal/mapper"
)

// ErrTooManyRows is returned by QuerySingle when more than one row matches.
var ErrTooManyRows = errors.New("store: query returned more than one row")

// Conn is the query/exec surface this layer needs from a connection.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RowFunc decodes the current row.
type RowFunc[T any] func(rows *sql.Rows) (T, error)

// Binding prepares a RowFunc for a result set with the given columns.
type Binding[T any] func(columns []string) (RowFunc[T], error)

// Bind decodes rows into T through m's column resolution.
func Bind[T any](m *mapper.Mapper) Binding[T] {
	return func(columns []string) (RowFunc[T], error) {
		if m == nil {
			return nil, fmt.Errorf("store: mapper is nil")
		}
		b := m.Binder(columns)
		return func(rows *sql.Rows) (T, error) {
			var v T
			err := b.Scan(rows, &v)
			return v, err
		}, nil
	}
}

// Decode wraps an explicit per-row decoder. Columns are not consulted.
func Decode[T any](fn func(rows *sql.Rows) (T, error)) Binding[T] {
	return func([]string) (RowFunc[T], error) {
		if fn == nil {
			return nil, fmt.Errorf("store: decoder is nil")
		}
		return fn, nil
	}
}

// Scalar decodes the first column of each row into T.
func Scalar[T any]() Binding[T] {
	return func(columns []string) (RowFunc[T], error) {
		if len(columns) != 1 {
			return nil, fmt.Errorf("store: scalar query returned %d columns", len(columns))
		}
		return func(rows *sql.Rows) (T, error) {
			var v T
			err := rows.Scan(&v)
			return v, err
		}, nil
	}
}

// Query runs a parameterized query and decodes every row.
// Returns an empty slice (not nil) when no rows match.
func Query[T any](ctx context.Context, c Conn, bind Binding[T], query string, args ...any) ([]T, error) {
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decode, err := prepare(rows, bind)
	if err != nil {
		return nil, err
	}

	out := []T{}
	for rows.Next() {
		v, err := decode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// QuerySingle runs a query that must yield exactly one row.
// Returns sql.ErrNoRows for zero rows and ErrTooManyRows for more than one.
func QuerySingle[T any](ctx context.Context, c Conn, bind Binding[T], query string, args ...any) (T, error) {
	var zero T
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	decode, err := prepare(rows, bind)
	if err != nil {
		return zero, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, fmt.Errorf("iterate rows: %w", err)
		}
		return zero, sql.ErrNoRows
	}
	v, err := decode(rows)
	if err != nil {
		return zero, fmt.Errorf("scan row: %w", err)
	}
	if rows.Next() {
		return zero, ErrTooManyRows
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("iterate rows: %w", err)
	}
	return v, nil
}

// Execute runs a non-query statement and returns the affected-row count.
func Execute(ctx context.Context, c Conn, query string, args ...any) (int64, error) {
	res, err := c.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func prepare[T any](rows *sql.Rows, bind Binding[T]) (RowFunc[T], error) {
	if bind == nil {
		return nil, fmt.Errorf("store: binding is nil")
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return bind(cols)
}
