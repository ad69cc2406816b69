package editor

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ApplyPatch replays the hunks of a unified diff against snippet. Context
// and deletion lines must match the original exactly; a hunk referencing
// lines beyond the snippet fails with *OpError. Trailing-newline presence is
// preserved.
func ApplyPatch(snippet, unifiedDiff string) (string, error) {
	trailingNewline := strings.HasSuffix(snippet, "\n")
	body := snippet
	if trailingNewline {
		body = strings.TrimSuffix(body, "\n")
	}
	orig := strings.Split(body, "\n")

	var (
		result []string
		cursor int // next unconsumed original line (0-based)
		seen   int // hunks applied
	)

	diffLines := strings.Split(unifiedDiff, "\n")
	for i := 0; i < len(diffLines); i++ {
		line := diffLines[i]
		m := hunkHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		seen++

		start, _ := strconv.Atoi(m[1])
		// A zero-length old range means "insert after line N", so N is
		// already the 0-based insertion index.
		if start > 0 && m[2] != "0" {
			start-- // to 0-based
		}
		if start < cursor {
			return "", opErrorf("apply_patch", "hunk %d overlaps a previous hunk", seen)
		}
		if start > len(orig) {
			return "", opErrorf("apply_patch", "hunk %d starts at line %s beyond snippet length %d", seen, m[1], len(orig))
		}
		result = append(result, orig[cursor:start]...)
		cursor = start

		for i+1 < len(diffLines) {
			next := diffLines[i+1]
			if hunkHeader.MatchString(next) {
				break
			}
			if strings.HasPrefix(next, "---") || strings.HasPrefix(next, "+++") {
				i++
				continue
			}
			// The diff text's own trailing newline, not an empty context line.
			if next == "" && i+2 == len(diffLines) {
				i++
				continue
			}
			switch {
			case strings.HasPrefix(next, "+"):
				result = append(result, next[1:])
			case strings.HasPrefix(next, "-"):
				if err := matchLine(orig, cursor, next[1:], seen); err != nil {
					return "", err
				}
				cursor++
			case strings.HasPrefix(next, " "), next == "":
				content := next
				if content != "" {
					content = content[1:]
				}
				if err := matchLine(orig, cursor, content, seen); err != nil {
					return "", err
				}
				result = append(result, orig[cursor])
				cursor++
			case strings.HasPrefix(next, `\`):
				// "\ No newline at end of file" marker
			default:
				return "", opErrorf("apply_patch", "malformed diff line %q in hunk %d", next, seen)
			}
			i++
		}
	}

	if seen == 0 {
		return "", opErrorf("apply_patch", "no hunks found in diff")
	}

	result = append(result, orig[cursor:]...)
	patched := strings.Join(result, "\n")
	if trailingNewline {
		patched += "\n"
	}
	return patched, nil
}

func matchLine(orig []string, cursor int, want string, hunk int) error {
	if cursor >= len(orig) {
		return opErrorf("apply_patch", "hunk %d references line %d beyond snippet length %d", hunk, cursor+1, len(orig))
	}
	if orig[cursor] != want && strings.TrimRight(orig[cursor], " \t") != strings.TrimRight(want, " \t") {
		return opErrorf("apply_patch", "hunk %d context mismatch at line %d: want %q, have %q", hunk, cursor+1, want, orig[cursor])
	}
	return nil
}
