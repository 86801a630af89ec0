package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/TechXTT/sqlsession/pkg/plugin"
	"github.com/google/uuid"
)

// PrettyJSONHandler pretty prints JSON records, for development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}
	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// ParseLevel maps debug/info/warn/error onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return l, nil
}

// New builds a logger writing to w. format is "json", "pretty" or "text".
func New(format string, level slog.Level, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "pretty":
		return slog.New(&PrettyJSONHandler{JSONHandler: slog.NewJSONHandler(w, opts), writer: w}), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Decorate wraps an HTTP handler and logs the start and end of every request.
// It ignores requests to the paths in the ignoreList.
func Decorate(ignoreList []string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(ignoreList, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := uuid.NewString()
		startTime := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		logger.Info("request_started",
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", requestID,
		)

		next.ServeHTTP(rec, r)

		logger.Info("request_completed",
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", requestID,
			"status", rec.status,
			"duration_ms", float64(time.Since(startTime).Nanoseconds())/1e6,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// QueryHook logs every statement a session runs. Failures are logged at
// warn level, everything else at debug.
func QueryHook(logger *slog.Logger) plugin.Hook {
	return plugin.HookFunc(func(ctx context.Context, ev plugin.Event) {
		attrs := []any{
			"op", string(ev.Op),
			"table", ev.Table,
			"query", ev.Query,
			"rows", ev.Rows,
			"duration_ms", float64(ev.Duration.Nanoseconds()) / 1e6,
		}
		if ev.Err != nil {
			logger.WarnContext(ctx, "statement_failed", append(attrs, "error", ev.Err.Error())...)
			return
		}
		logger.DebugContext(ctx, "statement", attrs...)
	})
}
