package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/entmap/internal/compose"
	"github.com/roach88/entmap/internal/mapper"
	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/opid"
	"github.com/roach88/entmap/internal/store"
	"github.com/roach88/entmap/internal/translate"
	"github.com/roach88/entmap/internal/where"
)

// Repository runs queries and updates for entity type T.
// It holds no mutable state and is safe for concurrent use.
type Repository[T any] struct {
	conn   store.Conn
	table  *meta.TableDescriptor
	bind   store.Binding[T]
	tr     *translate.Translator
	logger *slog.Logger
	ids    opid.Generator
}

// New creates a Repository for T. T must be registered in reg.
func New[T any](conn store.Conn, reg *meta.Registry, opts ...Option) (*Repository[T], error) {
	if conn == nil {
		return nil, fmt.Errorf("repo: connection is nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("repo: registry is nil")
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	table, ok := reg.GetTable(typ)
	if !ok {
		return nil, &meta.ConfigError{
			Code:    meta.ErrCodeUnknownEntity,
			Entity:  typ.Name(),
			Message: "entity is not registered",
		}
	}

	c := &config{
		logger: slog.Default(),
		ids:    opid.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}

	r := &Repository[T]{
		conn:   conn,
		table:  table,
		tr:     c.translator,
		logger: c.logger,
		ids:    c.ids,
	}

	if r.tr == nil {
		tr, err := translate.New(reg, translate.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		r.tr = tr
	}
	r.tr = r.tr.For(typ)

	switch dec := c.decoder.(type) {
	case nil:
		m, err := mapper.New(reg, typ)
		if err != nil {
			return nil, err
		}
		r.bind = store.Bind[T](m)
	case func(*sql.Rows) (T, error):
		r.bind = store.Decode(dec)
	default:
		return nil, fmt.Errorf("repo: decoder %T does not produce %s", c.decoder, typ)
	}

	return r, nil
}

// Table returns the entity's table descriptor.
func (r *Repository[T]) Table() *meta.TableDescriptor {
	return r.table
}

// Find returns every entity matching exprs.
func (r *Repository[T]) Find(ctx context.Context, exprs ...where.Expr) ([]T, error) {
	return r.fetch(ctx, "find", exprs, compose.SelectOptions{})
}

// First returns one matching entity, or ErrNotFound.
func (r *Repository[T]) First(ctx context.Context, exprs ...where.Expr) (T, error) {
	return r.one(ctx, "first", exprs, compose.SelectOptions{Limit: 1})
}

// FirstOrDefault returns one matching entity, or nil.
func (r *Repository[T]) FirstOrDefault(ctx context.Context, exprs ...where.Expr) (*T, error) {
	return r.oneOrNil(ctx, "first", exprs, compose.SelectOptions{Limit: 1})
}

// Single returns the only matching entity. It fails with ErrNotFound when
// nothing matches and ErrAmbiguous when more than one row does.
func (r *Repository[T]) Single(ctx context.Context, exprs ...where.Expr) (T, error) {
	return r.one(ctx, "single", exprs, compose.SelectOptions{Limit: 2})
}

// SingleOrDefault is Single returning nil when nothing matches.
func (r *Repository[T]) SingleOrDefault(ctx context.Context, exprs ...where.Expr) (*T, error) {
	return r.oneOrNil(ctx, "single", exprs, compose.SelectOptions{Limit: 2})
}

// Last returns the matching entity with the highest primary key, or
// ErrNotFound.
func (r *Repository[T]) Last(ctx context.Context, exprs ...where.Expr) (T, error) {
	return r.one(ctx, "last", exprs, compose.SelectOptions{Descending: true, Limit: 1})
}

// LastOrDefault is Last returning nil when nothing matches.
func (r *Repository[T]) LastOrDefault(ctx context.Context, exprs ...where.Expr) (*T, error) {
	return r.oneOrNil(ctx, "last", exprs, compose.SelectOptions{Descending: true, Limit: 1})
}

// Get returns the entity with the given primary key, or ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, key any) (T, error) {
	return r.get(ctx, "get", r.ids.Generate(), key)
}

// Count returns the number of entities matching exprs.
func (r *Repository[T]) Count(ctx context.Context, exprs ...where.Expr) (int64, error) {
	const op = "count"
	w, err := r.translate(op, exprs)
	if err != nil {
		return 0, err
	}
	st := compose.Count(r.table, w)
	r.logStatement(r.ids.Generate(), op, st)

	n, err := store.QuerySingle(ctx, r.conn, store.Scalar[int64](), st.SQL, st.Args()...)
	if err != nil {
		return 0, r.wrap(op, err)
	}
	return n, nil
}

// Insert writes entity and returns it as read back from the database.
// When the table has no insert columns the input is returned unchanged and
// nothing is executed.
func (r *Repository[T]) Insert(ctx context.Context, entity T) (T, error) {
	const op = "insert"
	st, ok := compose.Insert(r.table, compose.EntityValues(&entity))
	if !ok {
		return entity, nil
	}
	pk, ok := r.table.PrimaryKey()
	if !ok {
		return entity, r.wrap(op, compose.ErrNoPrimaryKey)
	}

	id := r.ids.Generate()
	r.logStatement(id, op, st)
	res, err := r.conn.ExecContext(ctx, st.SQL, st.Args()...)
	if err != nil {
		return entity, r.wrap(op, err)
	}

	// An inserted key is read back as written, zero value included; only a
	// key the database assigns comes from LastInsertId.
	var key any
	if pk.IncludeOnInsert {
		key = pk.Field(reflect.ValueOf(&entity)).Interface()
	} else {
		key, err = res.LastInsertId()
		if err != nil {
			return entity, r.wrap(op, err)
		}
	}

	return r.get(ctx, op, id, key)
}

// UpdateAll writes entity's update columns to EVERY row of the table and
// returns the affected-row count.
func (r *Repository[T]) UpdateAll(ctx context.Context, entity T) (int64, error) {
	const op = "update_all"
	st, ok := compose.UpdateAll(r.table, compose.EntityValues(&entity))
	if !ok {
		return 0, nil
	}
	return r.exec(ctx, op, st)
}

// UpdateWhere writes entity's update columns to the rows matching exprs and
// returns the affected-row count. Matching nothing is not an error.
func (r *Repository[T]) UpdateWhere(ctx context.Context, entity T, exprs ...where.Expr) (int64, error) {
	const op = "update_where"
	w, err := r.tr.Translate(exprs...)
	if err != nil {
		return 0, r.wrap(op, err)
	}
	st, ok := compose.UpdateWhere(r.table, compose.EntityValues(&entity), w)
	if !ok {
		return 0, nil
	}
	return r.exec(ctx, op, st)
}

func (r *Repository[T]) exec(ctx context.Context, op string, st compose.Statement) (int64, error) {
	r.logStatement(r.ids.Generate(), op, st)
	n, err := store.Execute(ctx, r.conn, st.SQL, st.Args()...)
	if err != nil {
		return 0, r.wrap(op, err)
	}
	return n, nil
}

func (r *Repository[T]) get(ctx context.Context, op, id string, key any) (T, error) {
	var zero T
	st, err := compose.ByKey(r.table, key)
	if err != nil {
		return zero, r.wrap(op, err)
	}
	r.logStatement(id, op, st)

	v, err := store.QuerySingle(ctx, r.conn, r.bind, st.SQL, st.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, r.wrap(op, ErrNotFound)
	}
	if err != nil {
		return zero, r.wrap(op, err)
	}
	return v, nil
}

func (r *Repository[T]) one(ctx context.Context, op string, exprs []where.Expr, opts compose.SelectOptions) (T, error) {
	var zero T
	v, err := r.oneOrNil(ctx, op, exprs, opts)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, r.wrap(op, ErrNotFound)
	}
	return *v, nil
}

func (r *Repository[T]) oneOrNil(ctx context.Context, op string, exprs []where.Expr, opts compose.SelectOptions) (*T, error) {
	rows, err := r.fetch(ctx, op, exprs, opts)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, r.wrap(op, ErrAmbiguous)
	}
}

func (r *Repository[T]) fetch(ctx context.Context, op string, exprs []where.Expr, opts compose.SelectOptions) ([]T, error) {
	w, err := r.translate(op, exprs)
	if err != nil {
		return nil, err
	}
	opts.Where = w

	st, err := compose.Select(r.table, opts)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	r.logStatement(r.ids.Generate(), op, st)

	rows, err := store.Query(ctx, r.conn, r.bind, st.SQL, st.Args()...)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return rows, nil
}

// translate returns nil when there are no expressions: no WHERE clause.
func (r *Repository[T]) translate(op string, exprs []where.Expr) (*translate.ComputedWhere, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	w, err := r.tr.Translate(exprs...)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return &w, nil
}

func (r *Repository[T]) logStatement(id, op string, st compose.Statement) {
	r.logger.Debug("executing statement",
		"op_id", id,
		"op", op,
		"table", r.table.Name(),
		"sql", st.SQL,
		"params", len(st.Params),
	)
}

func (r *Repository[T]) wrap(op string, err error) error {
	return &QueryError{Op: op, Table: r.table.Name(), Err: err}
}
