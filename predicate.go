package sqlsession

import (
	"sort"

	"github.com/TechXTT/sqlsession/internal/core"
)

// Field is a typed handle on one column of entity T holding values of V.
//
//	var UserName = sqlsession.NewField[User, string]("name")
type Field[T any, V any] struct {
	column string
}

// NewField declares a column of T.
func NewField[T any, V any](column string) Field[T, V] {
	return Field[T, V]{column: column}
}

// Column returns the column name.
func (f Field[T, V]) Column() string {
	return f.column
}

// Predicate selects rows of T by column equality. Several predicates passed
// to one operation are combined with AND; none matches every row.
type Predicate[T any] struct {
	conds []core.Cond
}

// Eq matches rows whose field equals v. A nil v matches NULL.
func Eq[T any, V any](f Field[T, V], v V) Predicate[T] {
	return Predicate[T]{conds: []core.Cond{{Column: f.column, Value: v}}}
}

// Match builds a predicate from a column -> value map. The column names are
// not checked against T; unknown columns fail in the store.
func Match[T any](fields map[string]any) Predicate[T] {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := Predicate[T]{conds: make([]core.Cond, 0, len(keys))}
	for _, k := range keys {
		p.conds = append(p.conds, core.Cond{Column: k, Value: fields[k]})
	}
	return p
}

// And combines predicates into one.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return Predicate[T]{conds: conditions(preds)}
}

func conditions[T any](preds []Predicate[T]) []core.Cond {
	var out []core.Cond
	for _, p := range preds {
		out = append(out, p.conds...)
	}
	return out
}
