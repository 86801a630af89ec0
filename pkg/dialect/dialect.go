package dialect

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect identifies the SQL flavour a statement is rendered for.
type Dialect string

// Supported database dialects
const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

var (
	ErrUnknownDialect = errors.New("unknown database dialect")
	ErrInvalidURL     = errors.New("invalid database URL")
)

// FromURL returns the dialect based on the URL scheme.
func FromURL(dbURL string) (Dialect, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return Parse(u.Scheme)
}

// Parse maps a scheme or driver name onto a Dialect.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Quote quotes an identifier so that arbitrary column names cannot break out
// of the statement.
func (d Dialect) Quote(ident string) string {
	switch d {
	case Postgres:
		return pq.QuoteIdentifier(ident)
	case MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// Returning reports whether generated keys are read back with RETURNING
// instead of sql.Result.LastInsertId.
func (d Dialect) Returning() bool {
	return d == Postgres
}

func (d Dialect) String() string {
	return string(d)
}
