package schema

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/TechXTT/sqlsession/pkg/internal/typeconv"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Schema is the set of entity types whose tables a session manages.
type Schema struct {
	tables []*Table
	seen   map[reflect.Type]bool
}

// New builds a schema from sample values or pointers of each model,
// e.g. schema.New(User{}, &Post{}).
func New(models ...any) (*Schema, error) {
	s := &Schema{seen: map[reflect.Type]bool{}}
	if err := s.Register(models...); err != nil {
		return nil, err
	}
	return s, nil
}

// Register adds models to the schema. Registering a type twice is a no-op.
func (s *Schema) Register(models ...any) error {
	if s.seen == nil {
		s.seen = map[reflect.Type]bool{}
	}
	for _, m := range models {
		if m == nil {
			return fmt.Errorf("register model: %w: got nil", ErrNotStruct)
		}
		tbl, err := TableOf(reflect.TypeOf(m))
		if err != nil {
			return fmt.Errorf("register model: %w", err)
		}
		if s.seen[tbl.Type] {
			continue
		}
		s.seen[tbl.Type] = true
		s.tables = append(s.tables, tbl)
	}
	return nil
}

// Tables returns the registered tables in registration order.
func (s *Schema) Tables() []*Table {
	return append([]*Table(nil), s.tables...)
}

// CreateAll creates every registered table that does not exist yet.
func (s *Schema) CreateAll(ctx context.Context, ex Execer, d dialect.Dialect) error {
	for _, tbl := range s.tables {
		if _, err := ex.ExecContext(ctx, CreateTableSQL(tbl, d)); err != nil {
			return fmt.Errorf("create table %s: %w", tbl.Name, err)
		}
	}
	return nil
}

// CreateTableSQL renders the CREATE TABLE IF NOT EXISTS statement for tbl.
func CreateTableSQL(tbl *Table, d dialect.Dialect) string {
	defs := make([]string, 0, len(tbl.Columns))
	for _, c := range tbl.Columns {
		def := d.Quote(c.Name) + " "
		switch {
		case c.AutoIncrement:
			def += typeconv.AutoIncrementType(d)
		case c.PrimaryKey:
			def += typeconv.SQLType(c.Type, d) + " PRIMARY KEY"
		default:
			def += typeconv.SQLType(c.Type, d)
			if !typeconv.Nullable(c.Type) {
				def += " NOT NULL"
			}
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Quote(tbl.Name), strings.Join(defs, ", "))
}
