package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"DATABASE_URL", "DATABASE_DRIVER", "LISTEN_ADDR", "LOG_FORMAT", "LOG_LEVEL", "MIGRATIONS_DIR"} {
		t.Setenv(k, "")
	}

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "sqlsession.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: postgres://app@localhost:5432/app
  driver: pgx
server:
  addr: ":8080"
log:
  format: json
`), 0o644))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MIGRATIONS_DIR", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@localhost:5432/app", cfg.Database.URL)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "migrations", cfg.Migrations.Dir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MIGRATIONS_DIR=db/migrations\n"), 0o644))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MIGRATIONS_DIR", "")
	os.Unsetenv("MIGRATIONS_DIR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "db/migrations", cfg.Migrations.Dir)
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
