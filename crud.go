package sqlsession

import (
	"context"
	"reflect"
	"time"

	"github.com/TechXTT/sqlsession/internal/core"
	"github.com/TechXTT/sqlsession/pkg/plugin"
	"github.com/TechXTT/sqlsession/pkg/schema"
)

// Create inserts ent and commits. When T has a zero auto-increment key the
// generated key is written back into ent.
func Create[T any](ctx context.Context, s *Session, ent *T) error {
	if ent == nil {
		return ErrNilEntity
	}
	conn, err := s.active()
	if err != nil {
		return err
	}
	tbl, err := schema.Of[T]()
	if err != nil {
		return err
	}

	v := reflect.ValueOf(ent).Elem()
	cols, vals := tbl.InsertValues(v)

	var key reflect.Value
	returning := ""
	if pk, ok := tbl.PrimaryKey(); ok && pk.AutoIncrement {
		if f := v.FieldByIndex(pk.Index); f.IsZero() {
			key, returning = f, pk.Name
		}
	}
	query, args := core.NewQueryBuilder(s.dialect).From(tbl.Name).BuildInsert(cols, vals, returning)

	start := time.Now()
	if key.IsValid() && s.dialect.Returning() {
		err = conn.QueryRowContext(ctx, query, args...).Scan(key.Addr().Interface())
		var rows int64
		if err == nil {
			rows = 1
		}
		s.observe(ctx, plugin.OpCreate, tbl.Name, query, args, rows, start, err)
		return err
	}

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		s.observe(ctx, plugin.OpCreate, tbl.Name, query, args, 0, start, err)
		return err
	}
	rows, _ := res.RowsAffected()
	s.observe(ctx, plugin.OpCreate, tbl.Name, query, args, rows, start, nil)
	if key.IsValid() {
		id, idErr := res.LastInsertId()
		if idErr != nil {
			s.logger.Warn("generated key not available", "table", tbl.Name, "error", idErr)
			return nil
		}
		setKey(key, id)
	}
	return nil
}

// Read returns every T matching all preds. The result is empty, not nil,
// when nothing matches.
func Read[T any](ctx context.Context, s *Session, preds ...Predicate[T]) ([]T, error) {
	conn, err := s.active()
	if err != nil {
		return nil, err
	}
	tbl, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}

	query, args := core.NewQueryBuilder(s.dialect).
		From(tbl.Name).
		Select(tbl.ColumnNames()...).
		Where(conditions(preds)...).
		Build()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		s.observe(ctx, plugin.OpRead, tbl.Name, query, args, 0, start, err)
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var item T
		if err := rows.Scan(tbl.ScanTargets(reflect.ValueOf(&item).Elem())...); err != nil {
			s.observe(ctx, plugin.OpRead, tbl.Name, query, args, int64(len(out)), start, err)
			return nil, err
		}
		out = append(out, item)
	}
	err = rows.Err()
	s.observe(ctx, plugin.OpRead, tbl.Name, query, args, int64(len(out)), start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAll returns every row of T.
func ReadAll[T any](ctx context.Context, s *Session) ([]T, error) {
	return Read[T](ctx, s)
}

// Update sets field to value on every row matching preds and commits.
func Update[T any, V any](ctx context.Context, s *Session, field Field[T, V], value V, preds ...Predicate[T]) error {
	return UpdateColumn[T](ctx, s, field.column, value, preds...)
}

// UpdateColumn is the untyped form of Update. The column name is passed to
// the store as is.
func UpdateColumn[T any](ctx context.Context, s *Session, column string, value any, preds ...Predicate[T]) error {
	conn, err := s.active()
	if err != nil {
		return err
	}
	tbl, err := schema.Of[T]()
	if err != nil {
		return err
	}

	query, args := core.NewQueryBuilder(s.dialect).
		From(tbl.Name).
		Where(conditions(preds)...).
		BuildUpdate(core.Cond{Column: column, Value: value})
	return s.exec(ctx, conn, plugin.OpUpdate, tbl.Name, query, args)
}

// Delete removes every row matching preds and commits. Deleting over an
// empty match set is a no-op.
func Delete[T any](ctx context.Context, s *Session, preds ...Predicate[T]) error {
	conn, err := s.active()
	if err != nil {
		return err
	}
	tbl, err := schema.Of[T]()
	if err != nil {
		return err
	}

	query, args := core.NewQueryBuilder(s.dialect).
		From(tbl.Name).
		Where(conditions(preds)...).
		BuildDelete()
	return s.exec(ctx, conn, plugin.OpDelete, tbl.Name, query, args)
}

func (s *Session) exec(ctx context.Context, conn core.Conn, op plugin.Op, table, query string, args []any) error {
	start := time.Now()
	res, err := conn.ExecContext(ctx, query, args...)
	var rows int64
	if err == nil {
		rows, _ = res.RowsAffected()
	}
	s.observe(ctx, op, table, query, args, rows, start, err)
	return err
}

func setKey(f reflect.Value, id int64) {
	switch f.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.SetUint(uint64(id))
	default:
		f.SetInt(id)
	}
}
