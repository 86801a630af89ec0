package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/TechXTT/sqlsession/pkg/plugin"
)

// Migration holds one versioned migration
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Manager applies and rolls back migrations
type Manager struct {
	db            *sql.DB
	dialect       dialect.Dialect
	migrationsDir string
	migrations    []Migration
	logger        *slog.Logger
	hooks         plugin.Hooks
}

const versionTable = "schema_migrations"

var fileRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// NewManager loads migration files from the specified directory. Every
// statement Up, Down and Reset execute is reported to hooks.
func NewManager(db *sql.DB, d dialect.Dialect, migrationsDir string, logger *slog.Logger, hooks ...plugin.Hook) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{db: db, dialect: d, migrationsDir: migrationsDir, logger: logger, hooks: hooks}
	if err := m.loadMigrations(); err != nil {
		return nil, err
	}
	return m, nil
}

// Migrations returns the loaded migrations sorted by version
func (m *Manager) Migrations() []Migration {
	return append([]Migration(nil), m.migrations...)
}

// loadMigrations reads .up.sql/.down.sql files and organizes them by version
func (m *Manager) loadMigrations() error {
	entries, err := os.ReadDir(m.migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	tmp := map[int]*Migration{}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		matches := fileRe.FindStringSubmatch(fi.Name())
		if len(matches) != 4 {
			continue
		}
		ver, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("parse version of %s: %w", fi.Name(), err)
		}
		name := matches[2]
		dir := matches[3]
		data, err := os.ReadFile(filepath.Join(m.migrationsDir, fi.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", fi.Name(), err)
		}
		mig, exists := tmp[ver]
		if !exists {
			mig = &Migration{Version: ver, Name: name}
			tmp[ver] = mig
		} else if mig.Name != name {
			return fmt.Errorf("version %d used by both %q and %q", ver, mig.Name, name)
		}
		if dir == "up" {
			mig.UpSQL = string(data)
		} else {
			mig.DownSQL = string(data)
		}
	}
	versions := make([]int, 0, len(tmp))
	for v := range tmp {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	m.migrations = m.migrations[:0]
	for _, v := range versions {
		m.migrations = append(m.migrations, *tmp[v])
	}
	return nil
}

// EnsureVersionTable creates schema_migrations if missing
func (m *Manager) EnsureVersionTable(ctx context.Context) error {
	return m.exec(ctx, versionTable, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`)
}

// currentVersion returns the highest applied migration version
func (m *Manager) currentVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	row := m.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`)
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// recordVersion inserts a version record
func (m *Manager) recordVersion(ctx context.Context, version int) error {
	return m.exec(ctx, versionTable,
		`INSERT INTO schema_migrations(version) VALUES(`+m.dialect.Placeholder(1)+`)`, version)
}

// deleteVersion removes a version record
func (m *Manager) deleteVersion(ctx context.Context, version int) error {
	return m.exec(ctx, versionTable,
		`DELETE FROM schema_migrations WHERE version = `+m.dialect.Placeholder(1), version)
}

// exec runs one statement and reports it to the hooks
func (m *Manager) exec(ctx context.Context, table, query string, args ...any) error {
	start := time.Now()
	res, err := m.db.ExecContext(ctx, query, args...)
	var rows int64
	if err == nil {
		rows, _ = res.RowsAffected()
	}
	m.hooks.AfterStatement(ctx, plugin.Event{
		Op:       plugin.OpMigrate,
		Table:    table,
		Query:    query,
		Args:     args,
		Rows:     rows,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

// Up applies all pending migrations
func (m *Manager) Up(ctx context.Context) error {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		m.logger.Info("applying migration", "version", mig.Version, "name", mig.Name)
		if err := m.exec(ctx, "", mig.UpSQL); err != nil {
			return fmt.Errorf("apply up %d: %w", mig.Version, err)
		}
		if err := m.recordVersion(ctx, mig.Version); err != nil {
			return fmt.Errorf("record version %d: %w", mig.Version, err)
		}
	}
	return nil
}

// Down rolls back the latest migration
func (m *Manager) Down(ctx context.Context) error {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return err
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		m.logger.Info("no migrations to roll back")
		return nil
	}
	var toRoll *Migration
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if m.migrations[i].Version == current {
			toRoll = &m.migrations[i]
			break
		}
	}
	if toRoll == nil {
		return fmt.Errorf("migration not found for version %d", current)
	}
	m.logger.Info("rolling back migration", "version", toRoll.Version, "name", toRoll.Name)
	if err := m.exec(ctx, "", toRoll.DownSQL); err != nil {
		return fmt.Errorf("apply down %d: %w", toRoll.Version, err)
	}
	return m.deleteVersion(ctx, toRoll.Version)
}

// Reset rolls back every applied migration, newest first, then reapplies all
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current {
			continue
		}
		m.logger.Info("reverting migration", "version", mig.Version, "name", mig.Name)
		if err := m.exec(ctx, "", mig.DownSQL); err != nil {
			return fmt.Errorf("apply down %d: %w", mig.Version, err)
		}
		if err := m.deleteVersion(ctx, mig.Version); err != nil {
			return fmt.Errorf("delete version %d: %w", mig.Version, err)
		}
	}
	return m.Up(ctx)
}

// Status reports the current version and whether each migration is applied
func (m *Manager) Status(ctx context.Context) (string, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return "", err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return "", err
	}
	lines := []string{fmt.Sprintf("Current version: %d", current)}
	for _, mig := range m.migrations {
		state := "pending"
		if mig.Version <= current {
			state = "applied"
		}
		lines = append(lines, fmt.Sprintf("%04d_%s: %s", mig.Version, mig.Name, state))
	}
	return strings.Join(lines, "\n"), nil
}
