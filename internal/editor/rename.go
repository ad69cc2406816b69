package editor

import (
	"regexp"
	"strings"

	"codemend/internal/protect"
	"codemend/internal/syntax"
)

// RenameOptions tunes RenameSymbol. Occurrence 0 renames every match, a
// positive value renames only the Nth match (1-based). Protected, when set,
// is consulted before renaming; a protected old name is refused unless
// Override is supplied.
type RenameOptions struct {
	IncludeStrings bool
	Occurrence     int
	Override       bool
	Protected      func(name string) (protect.Category, bool)
}

// RenameSymbol renames NAME tokens equal to old across the snippet. Tokens
// immediately preceded by a dot are attribute accesses and stay untouched,
// as do substrings of longer names and string-literal contents (unless
// IncludeStrings).
func RenameSymbol(snippet, old, new string, opts RenameOptions) (string, error) {
	if old == "" || new == "" {
		return "", opErrorf("rename_symbol", "old and new names must not be empty")
	}
	if opts.Protected != nil && !opts.Override {
		if cat, ok := opts.Protected(old); ok {
			return "", &protect.ViolationError{
				Violations: []protect.Violation{{Category: cat, Name: old}},
			}
		}
	}

	tokens, err := syntax.Tokenize(snippet)
	if err != nil {
		return "", err
	}

	var (
		b         strings.Builder
		prevSig   *syntax.Token // previous non-space token
		matched   int
		wordInStr *regexp.Regexp
	)
	if opts.IncludeStrings {
		wordInStr = regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
	}

	for i := range tokens {
		tok := tokens[i]
		text := tok.Text
		switch tok.Kind {
		case syntax.KindName:
			if text == old && !isDotPrefixed(prevSig) {
				matched++
				if opts.Occurrence == 0 || opts.Occurrence == matched {
					text = new
				}
			}
		case syntax.KindString:
			if wordInStr != nil {
				text = wordInStr.ReplaceAllString(text, new)
			}
		}
		b.WriteString(text)
		if tok.Kind != syntax.KindSpace {
			prevSig = &tokens[i]
		}
	}

	if opts.Occurrence > matched {
		return "", opErrorf("rename_symbol", "occurrence %d requested but only %d matches found", opts.Occurrence, matched)
	}
	return b.String(), nil
}

func isDotPrefixed(prev *syntax.Token) bool {
	return prev != nil && prev.Kind == syntax.KindOp && prev.Text == "."
}
