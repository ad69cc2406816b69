// Package trace emits structured event records for tool invocations. Events
// are data; whatever sink the zap logger is wired to decides formatting.
package trace

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const previewLimit = 120

// Recorder logs the lifecycle of edit-tool calls.
type Recorder struct {
	log *zap.Logger
}

// NewRecorder wraps logger. A nil logger produces a no-op recorder.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{log: logger}
}

// ToolCall records the start of a tool invocation and returns its call id.
func (r *Recorder) ToolCall(tool, sessionID, snippet string) string {
	callID := uuid.NewString()
	r.log.Info("tool_call",
		zap.String("event", "tool_call"),
		zap.String("tool", tool),
		zap.String("call_id", callID),
		zap.String("session", sessionID),
		zap.String("snippet_preview", preview(snippet)),
	)
	return callID
}

// ToolResult records the outcome of a tool invocation.
func (r *Recorder) ToolResult(tool, callID, result string, err error) {
	fields := []zap.Field{
		zap.String("event", "tool_result"),
		zap.String("tool", tool),
		zap.String("call_id", callID),
	}
	if err != nil {
		fields = append(fields, zap.String("error", err.Error()))
		r.log.Warn("tool_result", fields...)
		return
	}
	fields = append(fields, zap.String("result_preview", preview(result)))
	r.log.Info("tool_result", fields...)
}

// NewLogger builds the process logger. JSON output is the default; console
// encoding is for interactive runs.
func NewLogger(level string, jsonFormat bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if !jsonFormat {
		config.Encoding = "console"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}
