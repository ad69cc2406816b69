package editor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// PolicyKind selects what a stubbed body becomes.
type PolicyKind int

const (
	// PolicyRaise replaces the body with `raise NotImplementedError()`.
	PolicyRaise PolicyKind = iota
	// PolicyReturnLiteral replaces the body with `return <Literal>`.
	PolicyReturnLiteral
	// PolicyCustom replaces the body with caller-supplied lines.
	PolicyCustom
)

// StubPolicy describes the replacement body for StubFunction.
type StubPolicy struct {
	Kind    PolicyKind
	Literal string // PolicyReturnLiteral; defaults to None
	Body    string // PolicyCustom; may span multiple lines
}

func (p StubPolicy) bodyText() string {
	switch p.Kind {
	case PolicyReturnLiteral:
		lit := p.Literal
		if lit == "" {
			lit = "None"
		}
		return "return " + lit
	case PolicyCustom:
		return p.Body
	default:
		return "raise NotImplementedError()"
	}
}

// StubFunction locates the named def or async def and, when its body is
// exactly a single pass statement (after an optional docstring), replaces
// the body per policy. The signature line, decorators, docstring and the
// surrounding indentation are preserved byte for byte; only the pass span is
// rewritten. Both block and single-line (`def f(): pass`) forms are handled.
func StubFunction(snippet, name string, policy StubPolicy) (string, error) {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	fn := findFunction(tree.Root(), tree.Source, name)
	if fn == nil {
		return "", opErrorf("stub_function", "function %q not found", name)
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return "", opErrorf("stub_function", "function %q has no body", name)
	}

	pass := lonePassStatement(body)
	if pass == nil {
		return "", opErrorf("stub_function", "function %q body is not a single pass statement", name)
	}

	if pass.StartPoint().Row == fn.StartPoint().Row {
		return stubInline(snippet, fn, body, pass, policy), nil
	}
	return stubBlock(snippet, pass, policy), nil
}

func findFunction(node *sitter.Node, src []byte, name string) *sitter.Node {
	if node.Type() == "function_definition" {
		if n := node.ChildByFieldName("name"); n != nil && n.Content(src) == name {
			return node
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findFunction(node.NamedChild(i), src, name); found != nil {
			return found
		}
	}
	return nil
}

// lonePassStatement returns the pass statement when the body is exactly
// `pass`, optionally preceded by a docstring. Comments do not count as
// statements.
func lonePassStatement(body *sitter.Node) *sitter.Node {
	var stmts []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	if len(stmts) > 1 && isDocstring(stmts[0]) {
		stmts = stmts[1:]
	}
	if len(stmts) == 1 && stmts[0].Type() == "pass_statement" {
		return stmts[0]
	}
	return nil
}

func isDocstring(stmt *sitter.Node) bool {
	return stmt.Type() == "expression_statement" &&
		stmt.NamedChildCount() == 1 &&
		stmt.NamedChild(0).Type() == "string"
}

// stubBlock rewrites a pass statement that sits on its own line. The
// replacement reuses the pass statement's indentation, so tabs-vs-spaces
// style carries over untouched.
func stubBlock(snippet string, pass *sitter.Node, policy StubPolicy) string {
	start := int(pass.StartByte())
	end := int(pass.EndByte())
	indent := lineIndent(snippet, start)

	lines := strings.Split(policy.bodyText(), "\n")
	replacement := lines[0]
	for _, line := range lines[1:] {
		replacement += "\n" + indent + line
	}
	return snippet[:start] + replacement + snippet[end:]
}

// stubInline converts `def f(): pass` into block form, indenting one level
// past the def line (tabs when the def line is tab-indented).
func stubInline(snippet string, fn, body, pass *sitter.Node, policy StubPolicy) string {
	defIndent := lineIndent(snippet, int(fn.StartByte()))
	unit := "    "
	if strings.Contains(defIndent, "\t") {
		unit = "\t"
	}
	indent := defIndent + unit

	// The body follows the colon; rewrite everything from just after the
	// colon through the pass statement.
	colon := strings.LastIndexByte(snippet[:int(body.StartByte())], ':')
	if colon < 0 {
		colon = int(body.StartByte()) - 1
	}

	var b strings.Builder
	b.WriteString(snippet[:colon+1])
	for _, line := range strings.Split(policy.bodyText(), "\n") {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(line)
	}
	b.WriteString(snippet[int(pass.EndByte()):])
	return b.String()
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(snippet string, offset int) string {
	lineStart := strings.LastIndexByte(snippet[:offset], '\n') + 1
	end := lineStart
	for end < len(snippet) && (snippet[end] == ' ' || snippet[end] == '\t') {
		end++
	}
	return snippet[lineStart:end]
}
