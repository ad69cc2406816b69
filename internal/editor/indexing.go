package editor

import (
	"strconv"
	"strings"

	"codemend/internal/syntax"
)

// IndexFix describes one targeted subscript adjustment. Occurrence selects
// the Nth bracketed numeric literal (1-based, default first) among those
// matching OldValue when OldValue is set. Exactly one of NewValue or Delta
// supplies the replacement. This targeted, occurrence-addressed form is the
// only supported semantics; whole-file index rewriting exists solely as the
// deprecated LegacyBlindFixIndexing.
type IndexFix struct {
	OldValue   *int
	NewValue   *int
	Delta      int
	Occurrence int
}

// subscriptLiteral is a numeric literal that is the sole content of a
// bracketed subscript expression.
type subscriptLiteral struct {
	tokenIdx int
	value    int
}

// FixIndexing adjusts one numeric subscript literal in snippet. A request
// whose result would be a negative index fails with *OpError; a request that
// matches nothing returns the snippet unchanged.
func FixIndexing(snippet string, req IndexFix) (string, error) {
	if req.NewValue == nil && req.Delta == 0 {
		return "", opErrorf("fix_indexing", "either a new value or a non-zero delta is required")
	}
	if req.Occurrence < 0 {
		return "", opErrorf("fix_indexing", "occurrence must be positive, got %d", req.Occurrence)
	}

	tokens, err := syntax.Tokenize(snippet)
	if err != nil {
		return "", err
	}

	candidates := subscriptLiterals(tokens)
	if req.OldValue != nil {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.value == *req.OldValue {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		return snippet, nil
	}

	occurrence := req.Occurrence
	if occurrence == 0 {
		occurrence = 1
	}
	if occurrence > len(candidates) {
		return "", opErrorf("fix_indexing", "occurrence %d requested but only %d matching subscripts found", occurrence, len(candidates))
	}

	target := candidates[occurrence-1]
	updated := target.value + req.Delta
	if req.NewValue != nil {
		updated = *req.NewValue
	}
	if updated < 0 {
		return "", opErrorf("fix_indexing", "adjustment would produce negative index %d", updated)
	}

	tok := tokens[target.tokenIdx]
	return snippet[:tok.Start] + strconv.Itoa(updated) + snippet[tok.End:], nil
}

// LegacyBlindFixIndexing decrements every positive bracketed numeric literal
// in the snippet by one. This is the unsafe whole-file behavior of the first
// generation of the tool: it corrupts unrelated subscripts, so it is gated
// behind configuration and prefixes its output with a manual-review warning
// whenever it touches more than one subscript.
//
// Deprecated: use FixIndexing with an explicit occurrence.
func LegacyBlindFixIndexing(snippet string) (string, error) {
	tokens, err := syntax.Tokenize(snippet)
	if err != nil {
		return "", err
	}

	candidates := subscriptLiterals(tokens)
	changed := 0
	var b strings.Builder
	last := 0
	for _, c := range candidates {
		if c.value == 0 {
			continue
		}
		tok := tokens[c.tokenIdx]
		b.WriteString(snippet[last:tok.Start])
		b.WriteString(strconv.Itoa(c.value - 1))
		last = tok.End
		changed++
	}
	b.WriteString(snippet[last:])

	result := b.String()
	if changed > 1 {
		result = "MANUAL REVIEW REQUIRED: multiple subscripts were adjusted; verify each change.\n\n" + result
	}
	return result, nil
}

// subscriptLiterals finds numeric literals standing alone between brackets
// that follow a subscriptable expression (a name, `]` or `)`), which rules
// out single-element list literals.
func subscriptLiterals(tokens []syntax.Token) []subscriptLiteral {
	var found []subscriptLiteral
	var prevSig *syntax.Token
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind == syntax.KindSpace {
			continue
		}
		if tok.Kind == syntax.KindOp && tok.Text == "[" && isSubscriptable(prevSig) {
			numIdx, closeOK := lonePositiveLiteral(tokens, i)
			if closeOK {
				if value, err := strconv.Atoi(tokens[numIdx].Text); err == nil {
					found = append(found, subscriptLiteral{tokenIdx: numIdx, value: value})
				}
			}
		}
		prevSig = &tokens[i]
	}
	return found
}

func isSubscriptable(prev *syntax.Token) bool {
	if prev == nil {
		return false
	}
	if prev.Kind == syntax.KindName {
		return true
	}
	return prev.Kind == syntax.KindOp && (prev.Text == "]" || prev.Text == ")")
}

// lonePositiveLiteral checks that the bracket opened at tokens[open] contains
// exactly one number token and returns its index.
func lonePositiveLiteral(tokens []syntax.Token, open int) (int, bool) {
	numIdx := -1
	for i := open + 1; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case syntax.KindSpace:
			continue
		case syntax.KindNumber:
			if numIdx >= 0 {
				return 0, false
			}
			numIdx = i
		case syntax.KindOp:
			if tokens[i].Text == "]" && numIdx >= 0 {
				return numIdx, true
			}
			return 0, false
		default:
			return 0, false
		}
	}
	return 0, false
}
