package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/TechXTT/sqlsession/pkg/internal/typeconv"
)

var (
	// ErrNotStruct is returned when an entity type is not a struct.
	ErrNotStruct = errors.New("entity must be a struct")
	// ErrNoColumns is returned when a struct has no mappable fields.
	ErrNoColumns = errors.New("entity has no mapped columns")
)

// Tabler lets an entity choose its own table name.
type Tabler interface {
	TableName() string
}

// Column describes a single mapped struct field.
type Column struct {
	Name          string       // column name
	Field         string       // Go struct field name
	Index         []int        // reflect field index path
	Type          reflect.Type // Go type of the field
	PrimaryKey    bool
	AutoIncrement bool // integer primary key filled in by the store
}

// Table describes an entity type and the table it maps to.
type Table struct {
	Name    string
	Type    reflect.Type
	Columns []Column
	pk      int
}

// PrimaryKey returns the key column, if the entity has one.
func (t *Table) PrimaryKey() (Column, bool) {
	if t.pk < 0 {
		return Column{}, false
	}
	return t.Columns[t.pk], true
}

// ColumnNames lists every column in field order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// InsertValues returns the columns and values to insert for the struct held
// by v. A zero auto-increment key is left out so the store generates it.
func (t *Table) InsertValues(v reflect.Value) ([]string, []any) {
	cols := make([]string, 0, len(t.Columns))
	args := make([]any, 0, len(t.Columns))
	for _, c := range t.Columns {
		f := v.FieldByIndex(c.Index)
		if c.AutoIncrement && f.IsZero() {
			continue
		}
		cols = append(cols, c.Name)
		args = append(args, f.Interface())
	}
	return cols, args
}

// ScanTargets returns pointers to every mapped field of v, in column order.
func (t *Table) ScanTargets(v reflect.Value) []any {
	ptrs := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		ptrs[i] = v.FieldByIndex(c.Index).Addr().Interface()
	}
	return ptrs
}

var cache sync.Map // reflect.Type -> *Table

// Of returns the table metadata of T.
func Of[T any]() (*Table, error) {
	return TableOf(reflect.TypeOf((*T)(nil)).Elem())
}

// TableOf returns the table metadata of the struct type t (or pointer to it).
func TableOf(t reflect.Type) (*Table, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := cache.Load(t); ok {
		return cached.(*Table), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}
	tbl := &Table{Name: tableName(t), Type: t, pk: -1}
	collect(t, nil, tbl)
	if len(tbl.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, t)
	}
	if tbl.pk < 0 {
		for i, c := range tbl.Columns {
			if c.Field == "ID" || c.Field == "Id" {
				tbl.pk = i
				break
			}
		}
	}
	if tbl.pk >= 0 {
		c := &tbl.Columns[tbl.pk]
		c.PrimaryKey = true
		c.AutoIncrement = typeconv.IsInteger(c.Type)
	}
	actual, _ := cache.LoadOrStore(t, tbl)
	return actual.(*Table), nil
}

var timeType = reflect.TypeOf(time.Time{})

func collect(t reflect.Type, parent []int, tbl *Table) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, hasTag := f.Tag.Lookup("db")
		if tag == "-" {
			continue
		}
		index := append(append([]int{}, parent...), i)
		if f.Anonymous && !hasTag && f.Type.Kind() == reflect.Struct && f.Type != timeType {
			collect(f.Type, index, tbl)
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = ToSnake(f.Name)
		}
		col := Column{Name: name, Field: f.Name, Index: index, Type: f.Type}
		tbl.Columns = append(tbl.Columns, col)
		for _, opt := range strings.Split(opts, ",") {
			if strings.TrimSpace(opt) == "pk" && tbl.pk < 0 {
				tbl.pk = len(tbl.Columns) - 1
			}
		}
	}
}

func tableName(t reflect.Type) string {
	if tn, ok := reflect.New(t).Interface().(Tabler); ok {
		return tn.TableName()
	}
	name := ToSnake(t.Name())
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}
	return name
}

// ToSnake converts a Go identifier to snake_case, keeping acronyms together
// (UserID -> user_id, HTTPServer -> http_server).
func ToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
