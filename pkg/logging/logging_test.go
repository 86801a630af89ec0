package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TechXTT/sqlsession/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("pretty", slog.LevelInfo, &buf)
	require.NoError(t, err)

	logger.Info("test message", "key", "value")

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result), buf.String())
	assert.Equal(t, "test message", result["msg"])
	assert.Equal(t, "value", result["key"])
	assert.Equal(t, "INFO", result["level"])
	assert.Contains(t, buf.String(), "\n  ")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("xml", slog.LevelInfo, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestDecorate(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Decorate([]string{"/health"}, logger, next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/home", nil))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var started, completed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &started))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &completed))
	assert.Equal(t, "request_started", started["msg"])
	assert.Equal(t, "request_completed", completed["msg"])
	assert.Equal(t, started["request_id"], completed["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), completed["status"])
}

func TestQueryHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hook := QueryHook(logger)

	hook.AfterStatement(context.Background(), plugin.Event{
		Op: plugin.OpRead, Table: "users", Query: "SELECT 1", Rows: 3, Duration: time.Millisecond,
	})
	hook.AfterStatement(context.Background(), plugin.Event{
		Op: plugin.OpDelete, Table: "users", Query: "DELETE", Err: errors.New("locked"),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"DEBUG"`)
	assert.Contains(t, lines[0], `"rows":3`)
	assert.Contains(t, lines[1], `"level":"WARN"`)
	assert.Contains(t, lines[1], `"error":"locked"`)
}
