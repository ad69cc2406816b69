package syntax

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Tree is a parsed snippet. The canonical source of truth stays the text;
// trees are recomputed per call and discarded, never cached across edits.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Parse parses snippet as Python source using tree-sitter. Invalid source
// fails with *Error carrying the position of the first broken node.
func Parse(snippet string) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(snippet)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &Error{Line: 1, Msg: err.Error()}
	}

	root := tree.RootNode()
	if root.HasError() {
		bad := firstErrorNode(root)
		point := bad.StartPoint()
		msg := "invalid syntax"
		if bad.IsMissing() {
			msg = "invalid syntax: missing " + bad.Type()
		}
		tree.Close()
		return nil, &Error{Line: int(point.Row) + 1, Col: int(point.Column), Msg: msg}
	}

	return &Tree{tree: tree, Source: src}, nil
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source bytes covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	return n.Content(t.Source)
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// firstErrorNode locates the shallowest ERROR or MISSING node under root.
func firstErrorNode(root *sitter.Node) *sitter.Node {
	if root.IsError() || root.IsMissing() {
		return root
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return root
}

// DottedName reconstructs a dotted callee name from an identifier or
// attribute chain, e.g. "os.path.join". Returns "" for call targets that
// are not plain name chains (subscripts, calls, lambdas).
func DottedName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "attribute":
		object := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if object == nil || attr == nil {
			return ""
		}
		base := DottedName(object, src)
		if base == "" {
			return ""
		}
		return base + "." + attr.Content(src)
	default:
		return ""
	}
}

// BaseName returns the first segment of a dotted name.
func BaseName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
