package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandler_FanOutSkipsNil(t *testing.T) {
	var file, graylog bytes.Buffer
	multi := NewMultiHandler(
		slog.NewTextHandler(&file, nil),
		nil,
		slog.NewJSONHandler(&graylog, nil),
	)
	require.Len(t, multi.handlers, 2)

	slog.New(multi).Info("E1 TARGET DESTROYED")
	assert.Contains(t, file.String(), "E1 TARGET DESTROYED")
	assert.Contains(t, graylog.String(), `"msg":"E1 TARGET DESTROYED"`)
}

func TestMultiHandler_EnabledByAnySink(t *testing.T) {
	ctx := context.Background()
	info := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
	assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))

	slog.New(multi).Info("loiter expired")
	assert.Contains(t, buf.String(), "loiter expired")
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(slog.NewTextHandler(&buf, nil))
	assert.Equal(t, multi, multi.WithGroup(""))

	logger := slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "engine")}).WithGroup("attack"))
	logger.Info("resolved", "roll", 7)
	assert.Contains(t, buf.String(), "component=engine")
	assert.Contains(t, buf.String(), "attack.roll=7")
}

func TestContextHandler_WithAttrsKeepsProvider(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		calls++
		return []slog.Attr{slog.String("phase", "ENEMY_FIRE")}
	})

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "engine")}).WithGroup("g"))
	logger.Info("fired", "roll", 7)

	out := buf.String()
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "g.roll=7")
	assert.Contains(t, out, "g.phase=ENEMY_FIRE")
	assert.Equal(t, 1, calls)
	assert.Same(t, h, h.WithGroup(""))
}
