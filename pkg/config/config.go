package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for serve, migrate and the session.
type Config struct {
	Database   Database   `yaml:"database"`
	Server     Server     `yaml:"server"`
	Log        Log        `yaml:"log"`
	Migrations Migrations `yaml:"migrations"`
}

type Database struct {
	URL    string `yaml:"url"`
	Driver string `yaml:"driver"` // optional: postgres, pgx, mysql, sqlite
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type Migrations struct {
	Dir string `yaml:"dir"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Database:   Database{URL: "sqlite://sqlsession.sqlite3"},
		Server:     Server{Addr: ":5000"},
		Log:        Log{Format: "text", Level: "info"},
		Migrations: Migrations{Dir: "migrations"},
	}
}

// Load reads .env, then the YAML file at path (a missing file is fine),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"DATABASE_URL", &cfg.Database.URL},
		{"DATABASE_DRIVER", &cfg.Database.Driver},
		{"LISTEN_ADDR", &cfg.Server.Addr},
		{"LOG_FORMAT", &cfg.Log.Format},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"MIGRATIONS_DIR", &cfg.Migrations.Dir},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("database url is empty")
	}
	return cfg, nil
}
