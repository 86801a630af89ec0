package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sqlsession "github.com/TechXTT/sqlsession"
	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/TechXTT/sqlsession/pkg/logging"
	"github.com/TechXTT/sqlsession/pkg/schema"
	"github.com/julienschmidt/httprouter"
)

// User is the model the application keeps in its store.
type User struct {
	ID   int    `db:"id,pk" json:"id"`
	Name string `db:"name" json:"name"`
	Age  int    `db:"age" json:"age"`
}

// App is the web application and the managed connection it owns. It
// satisfies sqlsession.AppContext.
type App struct {
	db      *sql.DB
	dialect dialect.Dialect
	schema  *schema.Schema
	logger  *slog.Logger
	router  *httprouter.Router
}

// New wires the routes for an application backed by db.
func New(db *sql.DB, d dialect.Dialect, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	models, err := schema.New(User{})
	if err != nil {
		return nil, err
	}
	a := &App{db: db, dialect: d, schema: models, logger: logger, router: httprouter.New()}
	a.routes()
	return a, nil
}

func (a *App) DB() *sql.DB              { return a.db }
func (a *App) Dialect() dialect.Dialect { return a.dialect }
func (a *App) Schema() *schema.Schema   { return a.schema }

// Handler returns the routed handler wrapped in request logging.
func (a *App) Handler() http.Handler {
	return logging.Decorate(nil, a.logger, a.router)
}

// Init opens a session on the managed connection, which creates the
// application's tables, and releases it again.
func (a *App) Init(ctx context.Context) error {
	s, err := sqlsession.New(ctx,
		sqlsession.WithApp(a),
		sqlsession.WithLogger(a.logger),
		sqlsession.WithHooks(logging.QueryHook(a.logger)))
	if err != nil {
		return fmt.Errorf("initialise database: %w", err)
	}
	return s.Close()
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
