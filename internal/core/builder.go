// File: internal/core/builder.go
package core

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/TechXTT/sqlsession/pkg/dialect"
)

// Cond is a single column = value condition.
type Cond struct {
	Column string
	Value  any
}

// QueryBuilder renders equality-filtered statements against one table
type QueryBuilder struct {
	dialect    dialect.Dialect
	table      string
	selectCols []string
	where      []Cond
}

func NewQueryBuilder(d dialect.Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: d}
}

func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.table = table
	return qb
}

func (qb *QueryBuilder) Select(cols ...string) *QueryBuilder {
	qb.selectCols = cols
	return qb
}

// Where adds an equality condition; conditions are joined with AND
func (qb *QueryBuilder) Where(conds ...Cond) *QueryBuilder {
	qb.where = append(qb.where, conds...)
	return qb
}

// Build assembles the SELECT statement and returns it with args
func (qb *QueryBuilder) Build() (string, []interface{}) {
	var (
		b    strings.Builder
		args []interface{}
	)
	b.WriteString("SELECT ")
	if len(qb.selectCols) > 0 {
		b.WriteString(qb.columnList(qb.selectCols))
	} else {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	b.WriteString(qb.dialect.Quote(qb.table))
	args = qb.writeWhere(&b, args)
	return b.String(), args
}

// BuildInsert renders an INSERT; returning names a column to read back
// (only honoured by dialects that support RETURNING).
func (qb *QueryBuilder) BuildInsert(cols []string, vals []interface{}, returning string) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s ", qb.dialect.Quote(qb.table))
	if len(cols) == 0 {
		if qb.dialect == dialect.MySQL {
			b.WriteString("() VALUES ()")
		} else {
			b.WriteString("DEFAULT VALUES")
		}
	} else {
		marks := make([]string, len(cols))
		for i := range cols {
			marks[i] = qb.dialect.Placeholder(i + 1)
		}
		fmt.Fprintf(&b, "(%s) VALUES (%s)", qb.columnList(cols), strings.Join(marks, ", "))
	}
	if returning != "" && qb.dialect.Returning() {
		b.WriteString(" RETURNING ")
		b.WriteString(qb.dialect.Quote(returning))
	}
	return b.String(), append([]interface{}(nil), vals...)
}

// BuildUpdate renders UPDATE ... SET column = value for the WHERE conditions
func (qb *QueryBuilder) BuildUpdate(set Cond) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s = %s",
		qb.dialect.Quote(qb.table), qb.dialect.Quote(set.Column), qb.dialect.Placeholder(1))
	args := qb.writeWhere(&b, []interface{}{set.Value})
	return b.String(), args
}

// BuildDelete renders DELETE for the WHERE conditions
func (qb *QueryBuilder) BuildDelete() (string, []interface{}) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(qb.dialect.Quote(qb.table))
	args := qb.writeWhere(&b, nil)
	return b.String(), args
}

func (qb *QueryBuilder) columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = qb.dialect.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// writeWhere appends the WHERE clause; a nil value (including a nil pointer
// or slice) compares with IS NULL.
func (qb *QueryBuilder) writeWhere(b *strings.Builder, args []interface{}) []interface{} {
	if len(qb.where) == 0 {
		return args
	}
	parts := make([]string, len(qb.where))
	for i, c := range qb.where {
		if isNull(c.Value) {
			parts[i] = qb.dialect.Quote(c.Column) + " IS NULL"
			continue
		}
		args = append(args, c.Value)
		parts[i] = qb.dialect.Quote(c.Column) + " = " + qb.dialect.Placeholder(len(args))
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(parts, " AND "))
	return args
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return true
		}
		dv, err := valuer.Value()
		return err == nil && dv == nil
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}
