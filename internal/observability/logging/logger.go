// Package logging builds the slog loggers shared by the API and the worker.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"tlwd-backend/internal/handler/http/requestid"
)

// Redacted replaces the value of attributes whose key looks like a credential.
const Redacted = "[REDACTED]"

var sensitiveKeys = []string{"password", "secret", "token", "authorization", "api_key", "apikey"}

// Format selects the handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New returns a logger writing to w. Records at warn and above carry their
// source location.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelWarn,
		ReplaceAttr: redact,
	}
	if format == FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewLogger reads LOG_LEVEL (debug, info, warn, error) and LOG_FORMAT
// (json, text) and logs to stdout.
func NewLogger() *slog.Logger {
	return New(os.Stdout, LevelFromEnv(), FormatFromEnv())
}

// LevelFromEnv parses LOG_LEVEL. Unknown values mean info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatFromEnv parses LOG_FORMAT. Anything but "text" means JSON.
func FormatFromEnv() Format {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// WithRequestID decorates logger with the request id carried by ctx.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, Redacted)
		}
	}
	return a
}
