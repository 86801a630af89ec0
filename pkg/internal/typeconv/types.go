package typeconv

import (
	"database/sql"
	"reflect"
	"time"

	"github.com/TechXTT/sqlsession/pkg/dialect"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	nullString  = reflect.TypeOf(sql.NullString{})
	nullInt64   = reflect.TypeOf(sql.NullInt64{})
	nullInt32   = reflect.TypeOf(sql.NullInt32{})
	nullFloat64 = reflect.TypeOf(sql.NullFloat64{})
	nullBool    = reflect.TypeOf(sql.NullBool{})
	nullTime    = reflect.TypeOf(sql.NullTime{})
)

// Nullable reports whether values of t can hold NULL.
func Nullable(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		return true
	}
	switch t {
	case nullString, nullInt64, nullInt32, nullFloat64, nullBool, nullTime, bytesType:
		return true
	}
	return false
}

// SQLType maps a Go field type onto a column type for the given dialect.
func SQLType(t reflect.Type, d dialect.Dialect) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case timeType, nullTime:
		switch d {
		case dialect.Postgres:
			return "TIMESTAMPTZ"
		case dialect.MySQL:
			return "DATETIME"
		default:
			return "TIMESTAMP"
		}
	case bytesType:
		switch d {
		case dialect.Postgres:
			return "BYTEA"
		default:
			return "BLOB"
		}
	case nullString:
		return textType(d)
	case nullInt64, nullInt32:
		return integerType(t.Kind(), d)
	case nullFloat64:
		return realType(d)
	case nullBool:
		return "BOOLEAN"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return integerType(t.Kind(), d)
	case reflect.Float32, reflect.Float64:
		return realType(d)
	case reflect.Bool:
		return "BOOLEAN"
	default:
		return textType(d)
	}
}

// AutoIncrementType returns the column definition of a generated integer key.
func AutoIncrementType(d dialect.Dialect) string {
	switch d {
	case dialect.Postgres:
		return "BIGSERIAL PRIMARY KEY"
	case dialect.MySQL:
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	default:
		// SQLite only aliases rowid for the exact spelling INTEGER.
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// IsInteger reports whether t is a plain integer kind.
func IsInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func integerType(k reflect.Kind, d dialect.Dialect) string {
	if d == dialect.SQLite {
		return "INTEGER"
	}
	switch k {
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Struct:
		return "BIGINT"
	default:
		return "INTEGER"
	}
}

func realType(d dialect.Dialect) string {
	if d == dialect.SQLite {
		return "REAL"
	}
	return "DOUBLE PRECISION"
}

func textType(d dialect.Dialect) string {
	if d == dialect.MySQL {
		return "VARCHAR(255)"
	}
	return "TEXT"
}
