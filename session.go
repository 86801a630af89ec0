// Package sqlsession is a thin CRUD facade over database/sql.
//
// A Session owns exactly one connection. It is opened either from a raw
// *sql.DB plus a schema definition:
//
//	db, _ := runtime.Connect(ctx, "sqlite://tests/database.sqlite3", "")
//	models, _ := schema.New(User{})
//	s, err := sqlsession.New(ctx, sqlsession.WithEngine(db, dialect.SQLite, models))
//
// or from an application context that already manages the connection:
//
//	s, err := sqlsession.New(ctx, sqlsession.WithApp(application))
//
// Every write is committed as soon as it returns. Errors from the store are
// returned unchanged.
package sqlsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TechXTT/sqlsession/internal/core"
	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/TechXTT/sqlsession/pkg/plugin"
	"github.com/TechXTT/sqlsession/pkg/schema"
)

var (
	// ErrNoConnection is returned by New when neither WithEngine nor WithApp
	// was supplied.
	ErrNoConnection = errors.New("sqlsession: no connection configured")
	// ErrAmbiguousConnection is returned by New when both modes were supplied.
	ErrAmbiguousConnection = errors.New("sqlsession: both engine and app supplied")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("sqlsession: session is closed")
	// ErrNilEntity is returned by Create when given a nil pointer.
	ErrNilEntity = errors.New("sqlsession: nil entity")
	// ErrNotStruct is returned, wrapped, when an entity type is not a struct.
	ErrNotStruct = schema.ErrNotStruct
)

const usage = `initialise the session as follows:

	db, err := runtime.Connect(ctx, "sqlite://tests/database.sqlite3", "")

	type User struct {
		ID   int
		Name string
	}

	models, err := schema.New(User{})
	s, err := sqlsession.New(ctx, sqlsession.WithEngine(db, dialect.SQLite, models))

or, inside the web application:

	s, err := sqlsession.New(ctx, sqlsession.WithApp(application))`

// AppContext is a managed connection owned by an application.
type AppContext interface {
	DB() *sql.DB
	Dialect() dialect.Dialect
	Schema() *schema.Schema
}

type options struct {
	db      *sql.DB
	dialect dialect.Dialect
	schema  *schema.Schema
	app     AppContext
	logger  *slog.Logger
	hooks   plugin.Hooks
}

// Option configures New.
type Option func(*options)

// WithEngine opens the session on db and creates the tables of s.
func WithEngine(db *sql.DB, d dialect.Dialect, s *schema.Schema) Option {
	return func(o *options) {
		o.db, o.dialect, o.schema = db, d, s
	}
}

// WithApp opens the session on the application's managed connection.
func WithApp(app AppContext) Option {
	return func(o *options) { o.app = app }
}

// WithLogger sets the logger used for the usage hint and key write-back
// warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHooks registers statement observers.
func WithHooks(hooks ...plugin.Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// Session is a single long-lived connection with CRUD helpers. It is not safe
// for concurrent use.
type Session struct {
	conn    core.Conn
	dialect dialect.Dialect
	logger  *slog.Logger
	hooks   plugin.Hooks
	closed  bool
}

// New opens a session. Exactly one of WithEngine or WithApp must be given.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	engine := o.db != nil && o.schema != nil
	app := o.app != nil
	switch {
	case engine && app:
		return nil, ErrAmbiguousConnection
	case !engine && !app:
		o.logger.Warn(usage)
		return nil, ErrNoConnection
	case app:
		o.db, o.dialect, o.schema = o.app.DB(), o.app.Dialect(), o.app.Schema()
		if o.db == nil {
			o.logger.Warn(usage)
			return nil, ErrNoConnection
		}
	}
	if _, err := dialect.Parse(string(o.dialect)); err != nil {
		return nil, err
	}

	conn, err := core.Acquire(ctx, o.db)
	if err != nil {
		return nil, err
	}
	s := &Session{
		conn:    conn,
		dialect: o.dialect,
		logger:  o.logger,
		hooks:   o.hooks,
	}
	if o.schema != nil {
		if err := o.schema.CreateAll(ctx, schemaExecer{s}, o.dialect); err != nil {
			_ = core.Release(conn)
			return nil, err
		}
	}
	return s, nil
}

// schemaExecer runs table creation on the session's connection and reports
// each statement to the hooks.
type schemaExecer struct {
	s *Session
}

func (e schemaExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := e.s.conn.ExecContext(ctx, query, args...)
	e.s.observe(ctx, plugin.OpSchema, "", query, args, 0, start, err)
	return res, err
}

// Dialect reports the dialect statements are rendered in.
func (s *Session) Dialect() dialect.Dialect {
	return s.dialect
}

// Close releases the connection so other processes can use the database.
// Closing an already closed session is a no-op.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	return core.Release(s.conn)
}

func (s *Session) active() (core.Conn, error) {
	if s == nil || s.closed {
		return nil, ErrClosed
	}
	return s.conn, nil
}

func (s *Session) observe(ctx context.Context, op plugin.Op, table, query string, args []any, rows int64, start time.Time, err error) {
	if len(s.hooks) == 0 {
		return
	}
	s.hooks.AfterStatement(ctx, plugin.Event{
		Op:       op,
		Table:    table,
		Query:    query,
		Args:     args,
		Rows:     rows,
		Duration: time.Since(start),
		Err:      err,
	})
}

func (s *Session) String() string {
	return fmt.Sprintf("sqlsession.Session{dialect: %s, closed: %t}", s.dialect, s.closed)
}
