package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/logger"
)

type ctxKey struct{}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewJSONWithExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, flush := logger.New(logger.Config{Level: "debug", Format: "json"}, &buf,
		logger.FromContext(ctxKey{}, "request_id"),
		nil,
	)
	defer flush()

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With(slog.String("component", "test")).DebugContext(ctx, "hello", slog.Int("n", 1))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])
	assert.EqualValues(t, 1, rec["n"])
}

func TestNewTextRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _ := logger.New(logger.Config{Level: "warn", Format: "text"}, &buf)
	log.Info("skipped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestFromContextSkipsEmpty(t *testing.T) {
	t.Parallel()

	ex := logger.FromContext(ctxKey{}, "user_id")
	_, ok := ex(context.Background())
	assert.False(t, ok)

	_, ok = ex(context.WithValue(context.Background(), ctxKey{}, int64(0)))
	assert.False(t, ok)

	attr, ok := ex(context.WithValue(context.Background(), ctxKey{}, int64(42)))
	require.True(t, ok)
	assert.Equal(t, int64(42), attr.Value.Int64())
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.False(t, logger.Discard().Enabled(context.Background(), slog.LevelError))
}
