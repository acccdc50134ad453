package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, buf *bytes.Buffer) *StructuredLogger {
	t.Helper()
	logger, err := NewStructuredLogger(NewTestingConfig("tbtc-market-service", buf))
	require.NoError(t, err)
	return logger
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "línea no es JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(t, &buf)

	ctx := WithRequestID(context.Background(), "req_123")
	logger.Info(ctx, "market fetched", Fields{"bytes": 42})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "market fetched", entry[FieldMessage])
	assert.Equal(t, "info", entry[FieldLevel])
	assert.Equal(t, "tbtc-market-service", entry[FieldService])
	assert.Equal(t, "req_123", entry[FieldRequestID])
	assert.Equal(t, "testing", entry["environment"])
	assert.EqualValues(t, 42, entry["bytes"])
	assert.Contains(t, entry, FieldTimestamp)
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(t, &buf)
	logger.SetLevel(LevelWarn)

	logger.Debug(context.Background(), "debug", nil)
	logger.Info(context.Background(), "info", nil)
	logger.Warn(context.Background(), "warn", nil)
	logger.Error(context.Background(), "error", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0][FieldMessage])
	assert.Equal(t, "error", entries[1][FieldMessage])
	assert.Equal(t, LevelWarn, logger.GetLevel())
}

func TestStructuredLogger_WithErrorDoesNotMutateFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(t, &buf)

	fields := Fields{"component": "test"}
	logger.ErrorWithError(context.Background(), "boom", errors.New("exit status 1"), fields)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "exit status 1", entries[0][FieldError])
	assert.Equal(t, "*errors.errorString", entries[0][FieldErrorType])

	assert.NotContains(t, fields, FieldError)
}

func TestStructuredLogger_DurationFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(t, &buf)

	ctx := WithStartTime(context.Background(), time.Now().Add(-50*time.Millisecond))
	logger.Info(ctx, "done", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	duration, ok := entries[0][FieldDuration].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, duration, 50.0)
}

func TestDomainLoggers_AddDomainField(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewLoggerFactory(NewTestingConfig("tbtc-market-service", &buf))
	require.NoError(t, err)

	set := factory.GetLoggerSet()
	ctx := context.Background()

	set.Upstream.ProcessCompleted(ctx, "node index.js --json", 0, 12.5, 128)
	set.Upstream.ProcessFailed(ctx, "node index.js --json", "timeout", "", errors.New("deadline"), 30000)
	set.Security.RateLimitExceeded(ctx, "10.0.0.1", "/tbtc")
	set.Cache.ErrorWithError(ctx, "redis down", errors.New("refused"), nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)

	assert.Equal(t, "upstream", entries[0][FieldDomain])
	assert.EqualValues(t, 128, entries[0][FieldUpstreamStdout])

	assert.Equal(t, "upstream", entries[1][FieldDomain])
	assert.Equal(t, "timeout", entries[1][FieldUpstreamOutcome])
	assert.Equal(t, "error", entries[1][FieldLevel])

	assert.Equal(t, "security", entries[2][FieldDomain])
	assert.Equal(t, "cache", entries[3][FieldDomain])
	assert.Equal(t, "refused", entries[3][FieldError])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	config := NewTestingConfig("tbtc-market-service", &buf).WithFormat(FormatText)
	logger, err := NewStructuredLogger(config)
	require.NoError(t, err)

	logger.Info(context.Background(), "hello", Fields{"k": "v"})

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "k=v")
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, LevelDebug, LogLevelFromString("DEBUG"))
	assert.Equal(t, LevelWarn, LogLevelFromString("warning"))
	assert.Equal(t, LevelError, LogLevelFromString("error"))
	assert.Equal(t, LevelInfo, LogLevelFromString("nope"))
	assert.Equal(t, FormatText, LogFormatFromString("TEXT"))
	assert.Equal(t, FormatJSON, LogFormatFromString(""))
}

func TestRequestIDGenerator(t *testing.T) {
	gen := NewRequestIDGenerator("ws")

	id := gen.Generate()
	assert.True(t, strings.HasPrefix(id, "ws_"))
	assert.NotEqual(t, id, gen.Generate())

	short := gen.GenerateShort()
	assert.Len(t, short, len("ws_")+8)
}

func TestUpstreamLogger_ProcessFields(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewLoggerFactory(NewTestingConfig("tbtc-market-service", &buf))
	require.NoError(t, err)

	upstream := factory.GetUpstreamLogger()
	ctx := context.Background()

	upstream.ProcessStarted(ctx, "node index.js --json", 4242)
	upstream.ProcessCompleted(ctx, "node index.js --json", 0, 12.5, 16)
	upstream.ProcessFailed(ctx, "node index.js --json", "process_error", "network error", errors.New("exit status 1"), 8)
	upstream.ProcessFailed(ctx, "node index.js --json", "empty_response", "", errors.New("empty"), 8)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)

	assert.EqualValues(t, 4242, entries[0][FieldUpstreamPID])

	assert.Equal(t, "node index.js --json", entries[1][FieldUpstreamCommand])
	assert.EqualValues(t, 0, entries[1][FieldUpstreamExitCode])
	assert.EqualValues(t, 12.5, entries[1][FieldUpstreamDuration])

	assert.Equal(t, "network error", entries[2][FieldUpstreamStderr])
	assert.NotContains(t, entries[3], FieldUpstreamStderr)
}

func TestStructuredLogger_AddSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewStructuredLogger(NewTestingConfig("tbtc-market-service", &buf).WithSource(true))
	require.NoError(t, err)

	logger.Info(context.Background(), "with source", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0]["source"], "TestStructuredLogger_AddSource")
}
