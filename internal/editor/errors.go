package editor

import "fmt"

// OpError reports an edit that could not be applied: an absent or ambiguous
// target, a malformed diff hunk, or an invalid index request. The original
// snippet is never modified when an OpError is returned.
type OpError struct {
	Op  string
	Msg string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func opErrorf(op, format string, args ...any) *OpError {
	return &OpError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
