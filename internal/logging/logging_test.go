package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOut(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("op", "sync")

	logger.Info("batch synced", "user_id", "u1")
	logger.Error("batch sync rolled back", "user_id", "u1")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errOnly.Bytes(), []byte("\n")))

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(errOnly.Bytes(), &rec))
	assert.Equal(t, "sync", rec["op"])
	assert.Equal(t, "batch sync rolled back", rec["msg"])

	assert.False(t, NewMultiHandler(slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelError})).
		Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandlerKeepsGoingPastFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&buf, nil))

	rec := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	err := h.Handle(context.Background(), rec)

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "boom")
}

func TestPGHandlerRecordMapping(t *testing.T) {
	h := (&PGHandler{}).WithAttrs([]slog.Attr{slog.String("op", "sync")}).(*PGHandler)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := slog.NewRecord(ts, slog.LevelError, "batch sync rolled back", 0)
	rec.AddAttrs(
		slog.String("user_id", "u1"),
		slog.String("request_id", "req-9"),
		slog.String("error", "connection reset"),
		slog.Float64("latency_ms", 12.6),
		slog.Int("products", 3),
	)

	entry := h.toSystemLog(rec)

	assert.Equal(t, ts, entry.Timestamp)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "batch sync rolled back", entry.Message)
	assert.Equal(t, "sync", entry.Op)
	assert.Equal(t, "req-9", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u1", *entry.UserID)
	assert.Equal(t, "connection reset", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)
	assert.JSONEq(t, `{"products":3}`, string(entry.Extra))
}

func TestPGHandlerOnlyErrors(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
