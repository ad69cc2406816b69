package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newObserved() (*Recorder, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewRecorder(zap.New(core)), logs
}

func TestRecorder_ToolCall(t *testing.T) {
	rec, logs := newObserved()

	callID := rec.ToolCall("add_import", "conv-1", "import os\n")
	assert.NotEmpty(t, callID)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "tool_call", fields["event"])
	assert.Equal(t, "add_import", fields["tool"])
	assert.Equal(t, callID, fields["call_id"])
	assert.Equal(t, "conv-1", fields["session"])
}

func TestRecorder_ToolCallIDsUnique(t *testing.T) {
	rec, _ := newObserved()
	first := rec.ToolCall("rename_symbol", "conv-1", "")
	second := rec.ToolCall("rename_symbol", "conv-1", "")
	assert.NotEqual(t, first, second)
}

func TestRecorder_ToolResultError(t *testing.T) {
	rec, logs := newObserved()

	rec.ToolResult("rename_symbol", "call-1", "", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestRecorder_SnippetPreviewTruncated(t *testing.T) {
	rec, logs := newObserved()

	long := strings.Repeat("x", 500)
	rec.ToolCall("apply_patch", "conv-1", long)

	preview := logs.All()[0].ContextMap()["snippet_preview"].(string)
	assert.Less(t, len(preview), 200)
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestRecorder_NilLoggerSafe(t *testing.T) {
	rec := NewRecorder(nil)
	assert.NotPanics(t, func() {
		id := rec.ToolCall("stub_function", "conv-1", "pass")
		rec.ToolResult("stub_function", id, "done", nil)
	})
}
