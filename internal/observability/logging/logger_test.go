package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/handler/http/requestid"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, LevelFromEnv())
		})
	}
}

func TestFormatFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	assert.Equal(t, FormatJSON, FormatFromEnv())
	t.Setenv("LOG_FORMAT", " Text ")
	assert.Equal(t, FormatText, FormatFromEnv())
	t.Setenv("LOG_FORMAT", "logfmt")
	assert.Equal(t, FormatJSON, FormatFromEnv())
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	logger := NewLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatText).Info("subscriber imported", slog.Int("count", 2))
	assert.True(t, strings.Contains(buf.String(), "msg=\"subscriber imported\""), buf.String())
	assert.Contains(t, buf.String(), "count=2")
}

func TestNew_Redacts(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatJSON).Info("login",
		slog.String("email", "admin@tlwd.org"),
		slog.String("password", "hunter22"),
		slog.String("PAYSTACK_SECRET_KEY", "sk_live_abc"),
		slog.String("Authorization", "Bearer x"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "admin@tlwd.org", entry["email"])
	assert.Equal(t, Redacted, entry["password"])
	assert.Equal(t, Redacted, entry["PAYSTACK_SECRET_KEY"])
	assert.Equal(t, Redacted, entry["Authorization"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo, FormatJSON)
	ctx := requestid.WithRequestID(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	WithRequestID(ctx, base).Info("donation verified", slog.String("reference", "TLWD-1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", entry["request_id"])
	assert.Equal(t, "TLWD-1", entry["reference"])
}

func TestWithRequestID_Empty(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo, FormatJSON)

	logger := WithRequestID(context.Background(), base)
	assert.Same(t, base, logger)
	logger.Info("no id")
	assert.NotContains(t, buf.String(), "request_id")
}
