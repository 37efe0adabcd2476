package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel, format string) (*PageforgeLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(&LoggerConfig{Level: level, Format: format, Output: buf}), buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, "text")
	ctx := context.Background()

	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Warn(ctx, nil, "shown warn")
	logger.Error(ctx, errors.New("boom"), "shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
	assert.Contains(t, out, "error=boom")
}

func TestComponentAndFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, "json")

	logger.WithComponent("routes").With("pages", 3).Info(context.Background(), "compiled", "routes", 2)

	out := buf.String()
	assert.Contains(t, out, `"component":"routes"`)
	assert.Contains(t, out, `"pages":3`)
	assert.Contains(t, out, `"routes":2`)
	assert.Contains(t, out, `"msg":"compiled"`)
}

func TestWithDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "text")

	_ = logger.With("request_id", "abc")
	logger.Info(context.Background(), "plain")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestFatalDoesNotExit(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "text")

	logger.Fatal(context.Background(), errors.New("no build"), "cannot start")

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "fatal=true")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Nop()
		l.Error(context.Background(), errors.New("x"), "discarded")
		l.WithComponent("c").With("k", "v").Info(context.Background(), "discarded")
	})
}

func TestPerfLogger(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "text")

	op := StartOperation(logger, "build")
	d := op.End(context.Background(), "routes", 4)

	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "build completed")
	assert.Contains(t, line, "operation=build")
	assert.Contains(t, line, "routes=4")
}
