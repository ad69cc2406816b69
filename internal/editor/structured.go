package editor

import "strings"

// Patch actions supported by ApplyStructuredPatch.
const (
	ActionReplace      = "replace"
	ActionDelete       = "delete"
	ActionInsertBefore = "insert_before"
	ActionInsertAfter  = "insert_after"
	ActionAppend       = "append"
	ActionPrepend      = "prepend"
)

// PatchOp is one structured edit. Target addresses an exact substring;
// Occurrence selects the Nth match (1-based) and 0 requires the target to be
// unique. Replacement is used by replace, Content by the insert/append
// actions.
type PatchOp struct {
	Action      string `json:"action"`
	Target      string `json:"target,omitempty"`
	Replacement string `json:"replacement,omitempty"`
	Content     string `json:"content,omitempty"`
	Occurrence  int    `json:"occurrence,omitempty"`
}

// ApplyStructuredPatch applies ops in order and returns the fully edited
// snippet. The batch is atomic: the first absent or ambiguous target aborts
// everything and no partial result escapes.
func ApplyStructuredPatch(snippet string, ops []PatchOp) (string, error) {
	if len(ops) == 0 {
		return "", opErrorf("apply_structured_patch", "no operations supplied")
	}

	text := snippet
	for i, op := range ops {
		var err error
		text, err = applyOp(text, op, i)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

func applyOp(text string, op PatchOp, idx int) (string, error) {
	switch op.Action {
	case ActionReplace:
		start, end, err := locateTarget(text, op, idx)
		if err != nil {
			return "", err
		}
		return text[:start] + op.Replacement + text[end:], nil

	case ActionDelete:
		start, end, err := locateTarget(text, op, idx)
		if err != nil {
			return "", err
		}
		return text[:start] + text[end:], nil

	case ActionInsertBefore:
		start, _, err := locateTarget(text, op, idx)
		if err != nil {
			return "", err
		}
		return text[:start] + op.Content + text[start:], nil

	case ActionInsertAfter:
		_, end, err := locateTarget(text, op, idx)
		if err != nil {
			return "", err
		}
		return text[:end] + op.Content + text[end:], nil

	case ActionAppend:
		if !strings.HasSuffix(text, "\n") && text != "" {
			text += "\n"
		}
		content := op.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return text + content, nil

	case ActionPrepend:
		content := op.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + text, nil

	default:
		return "", opErrorf("apply_structured_patch", "operation %d has unsupported action %q", idx+1, op.Action)
	}
}

// locateTarget resolves op.Target to a byte span of text. Occurrence 0
// requires a unique match; ambiguity and absence both abort the batch.
func locateTarget(text string, op PatchOp, idx int) (int, int, error) {
	if op.Target == "" {
		return 0, 0, opErrorf("apply_structured_patch", "operation %d (%s) requires a 'target'", idx+1, op.Action)
	}

	count := strings.Count(text, op.Target)
	if count == 0 {
		return 0, 0, opErrorf("apply_structured_patch", "operation %d target %q not found", idx+1, op.Target)
	}

	occurrence := op.Occurrence
	if occurrence == 0 {
		if count > 1 {
			return 0, 0, opErrorf("apply_structured_patch", "operation %d target %q is ambiguous (%d matches); set occurrence", idx+1, op.Target, count)
		}
		occurrence = 1
	}
	if occurrence > count {
		return 0, 0, opErrorf("apply_structured_patch", "operation %d occurrence %d requested but target %q matches %d times", idx+1, occurrence, op.Target, count)
	}

	start := 0
	for n := 0; n < occurrence; n++ {
		pos := strings.Index(text[start:], op.Target)
		start += pos
		if n < occurrence-1 {
			start += len(op.Target)
		}
	}
	return start, start + len(op.Target), nil
}
