package typeconv

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/stretchr/testify/assert"
)

func TestSQLType(t *testing.T) {
	var (
		s  string
		n  int
		f  float64
		b  bool
		ts time.Time
		ps *string
		ns sql.NullString
	)
	cases := []struct {
		v    any
		d    dialect.Dialect
		want string
	}{
		{s, dialect.Postgres, "TEXT"},
		{s, dialect.MySQL, "VARCHAR(255)"},
		{n, dialect.SQLite, "INTEGER"},
		{n, dialect.Postgres, "BIGINT"},
		{int32(0), dialect.MySQL, "INTEGER"},
		{f, dialect.SQLite, "REAL"},
		{f, dialect.Postgres, "DOUBLE PRECISION"},
		{b, dialect.SQLite, "BOOLEAN"},
		{ts, dialect.Postgres, "TIMESTAMPTZ"},
		{ts, dialect.MySQL, "DATETIME"},
		{ps, dialect.SQLite, "TEXT"},
		{ns, dialect.Postgres, "TEXT"},
		{[]byte(nil), dialect.Postgres, "BYTEA"},
	}
	for _, c := range cases {
		got := SQLType(reflect.TypeOf(c.v), c.d)
		assert.Equal(t, c.want, got, "%T on %s", c.v, c.d)
	}
}

func TestNullable(t *testing.T) {
	var ps *int
	assert.True(t, Nullable(reflect.TypeOf(ps)))
	assert.True(t, Nullable(reflect.TypeOf(sql.NullInt64{})))
	assert.False(t, Nullable(reflect.TypeOf(0)))
	assert.False(t, Nullable(reflect.TypeOf("")))
}
