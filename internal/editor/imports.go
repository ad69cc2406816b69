package editor

import (
	"regexp"
	"strings"

	"codemend/internal/syntax"
)

// ImportOptions selects the import form. Symbol produces
// "from <module> import <symbol>", Alias produces "import <module> as <alias>".
type ImportOptions struct {
	Symbol string
	Alias  string
}

var encodingComment = regexp.MustCompile(`^#.*coding[:=]\s*[-\w.]+`)

// AddImport inserts a single import line for module into snippet. The call is
// idempotent: when a matching import already exists the snippet is returned
// unchanged. The insertion index skips, in order, a leading shebang line, an
// encoding-declaration comment, the module docstring and leading blank lines;
// when a contiguous import block immediately follows, the new line is
// appended after its last line. Exactly one line is ever added per call and
// the snippet's trailing-newline convention is preserved.
func AddImport(snippet, module string, opts ImportOptions) (string, error) {
	if strings.TrimSpace(module) == "" {
		return "", opErrorf("add_import", "module name must not be empty")
	}

	line := importLine(module, opts)
	lines := strings.Split(snippet, "\n")

	if hasImport(lines, module, opts) {
		return snippet, nil
	}

	idx := insertionIndex(snippet, lines)

	// Extend an existing import block instead of opening a new one.
	if idx < len(lines) && isImportLine(lines[idx]) {
		for idx < len(lines) && isImportLine(lines[idx]) {
			idx++
		}
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:idx]...)
	updated = append(updated, line)
	updated = append(updated, lines[idx:]...)
	return strings.Join(updated, "\n"), nil
}

func importLine(module string, opts ImportOptions) string {
	switch {
	case opts.Symbol != "":
		line := "from " + module + " import " + opts.Symbol
		if opts.Alias != "" {
			line += " as " + opts.Alias
		}
		return line
	case opts.Alias != "":
		return "import " + module + " as " + opts.Alias
	default:
		return "import " + module
	}
}

// hasImport reports whether any line already imports module (and symbol, when
// requested). Lines inside multi-line string literals are excluded.
func hasImport(lines []string, module string, opts ImportOptions) bool {
	inString := stringLines(strings.Join(lines, "\n"))
	for i, raw := range lines {
		if inString[i+1] {
			continue
		}
		trimmed := strings.TrimSpace(raw)
		if opts.Symbol != "" {
			if fromImports(trimmed, module, opts.Symbol) {
				return true
			}
			continue
		}
		if plainImports(trimmed, module) {
			return true
		}
	}
	return false
}

func plainImports(line, module string) bool {
	rest, ok := strings.CutPrefix(line, "import ")
	if !ok {
		return false
	}
	for _, part := range strings.Split(rest, ",") {
		name := strings.TrimSpace(part)
		if alias := strings.Index(name, " as "); alias >= 0 {
			name = strings.TrimSpace(name[:alias])
		}
		if name == module {
			return true
		}
	}
	return false
}

func fromImports(line, module, symbol string) bool {
	rest, ok := strings.CutPrefix(line, "from ")
	if !ok {
		return false
	}
	mod, names, ok := strings.Cut(rest, " import ")
	if !ok || strings.TrimSpace(mod) != module {
		return false
	}
	for _, part := range strings.Split(names, ",") {
		name := strings.TrimSpace(part)
		if alias := strings.Index(name, " as "); alias >= 0 {
			name = strings.TrimSpace(name[:alias])
		}
		if name == symbol {
			return true
		}
	}
	return false
}

func isImportLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")
}

// insertionIndex computes the 0-based line index where a new import belongs.
func insertionIndex(snippet string, lines []string) int {
	idx := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		idx = 1
	}
	if idx < len(lines) && encodingComment.MatchString(lines[idx]) {
		idx++
	}
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}

	// A module docstring is the first significant token of the file. Using
	// the token stream here keeps us from ever treating text inside a string
	// literal as a docstring boundary.
	if end, ok := docstringEndLine(snippet, idx); ok {
		idx = end
		for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
			idx++
		}
	}
	return idx
}

// docstringEndLine returns the 0-based line index immediately after the
// module docstring, when the first significant token is a string starting at
// or after line at.
func docstringEndLine(snippet string, at int) (int, bool) {
	tokens, err := syntax.Tokenize(snippet)
	if err != nil {
		return 0, false
	}
	for i, tok := range tokens {
		switch tok.Kind {
		case syntax.KindSpace, syntax.KindNewline, syntax.KindComment:
			continue
		case syntax.KindString:
			// The string must be a whole statement; a string-typed
			// expression like `"a" + greeting()` is not a docstring.
			if tok.Line-1 < at || !statementEndsAfter(tokens, i) {
				return 0, false
			}
			end := tok.Line - 1 + strings.Count(tok.Text, "\n")
			return end + 1, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// statementEndsAfter reports whether only trivia follows tokens[i] before
// the next newline or end of input.
func statementEndsAfter(tokens []syntax.Token, i int) bool {
	for _, tok := range tokens[i+1:] {
		switch tok.Kind {
		case syntax.KindSpace, syntax.KindComment:
			continue
		case syntax.KindNewline:
			return true
		default:
			return false
		}
	}
	return true
}

// stringLines marks 1-based line numbers that fall inside a string literal
// spanning more than one line.
func stringLines(snippet string) map[int]bool {
	marked := map[int]bool{}
	tokens, err := syntax.Tokenize(snippet)
	if err != nil {
		return marked
	}
	for _, tok := range tokens {
		if tok.Kind != syntax.KindString {
			continue
		}
		span := strings.Count(tok.Text, "\n")
		for l := tok.Line + 1; l <= tok.Line+span; l++ {
			marked[l] = true
		}
	}
	return marked
}
