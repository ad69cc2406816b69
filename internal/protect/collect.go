package protect

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// Collect walks the snippet's syntax tree and records every function name,
// class name, call target, and entry-point call. Fails with *syntax.Error
// when the snippet does not parse.
func Collect(snippet string) (Identifiers, error) {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return Identifiers{}, err
	}
	defer tree.Close()

	ids := NewIdentifiers()
	collectNode(tree.Root(), tree.Source, &ids)
	return ids, nil
}

func collectNode(node *sitter.Node, src []byte, ids *Identifiers) {
	switch node.Type() {
	case "function_definition":
		if name := node.ChildByFieldName("name"); name != nil {
			ids.Functions[name.Content(src)] = struct{}{}
		}
	case "class_definition":
		if name := node.ChildByFieldName("name"); name != nil {
			ids.Classes[name.Content(src)] = struct{}{}
		}
	case "call":
		if fn := node.ChildByFieldName("function"); fn != nil {
			if name := syntax.DottedName(fn, src); name != "" {
				ids.Calls[name] = struct{}{}
			}
		}
	case "if_statement":
		if isMainGuard(node, src) {
			collectEntryPoints(node.ChildByFieldName("consequence"), src, ids)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectNode(node.NamedChild(i), src, ids)
	}
}

// isMainGuard matches `if __name__ == "__main__":` in either operand order.
func isMainGuard(node *sitter.Node, src []byte) bool {
	cond := node.ChildByFieldName("condition")
	if cond == nil || cond.Type() != "comparison_operator" {
		return false
	}
	if cond.NamedChildCount() != 2 {
		return false
	}
	left := cond.NamedChild(0)
	right := cond.NamedChild(1)
	return (isDunderName(left, src) && isMainString(right, src)) ||
		(isDunderName(right, src) && isMainString(left, src))
}

func isDunderName(n *sitter.Node, src []byte) bool {
	return n.Type() == "identifier" && n.Content(src) == "__name__"
}

func isMainString(n *sitter.Node, src []byte) bool {
	if n.Type() != "string" {
		return false
	}
	return strings.Trim(n.Content(src), `"'`) == "__main__"
}

// collectEntryPoints records calls that appear as direct statements of the
// guard body. Nested calls inside those statements still register, since a
// caller losing `main(run())` loses both.
func collectEntryPoints(body *sitter.Node, src []byte, ids *Identifiers) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		recordCallNames(stmt, src, ids)
	}
}

func recordCallNames(node *sitter.Node, src []byte, ids *Identifiers) {
	if node.Type() == "call" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			if name := syntax.DottedName(fn, src); name != "" {
				ids.EntryPoints[name] = struct{}{}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		recordCallNames(node.NamedChild(i), src, ids)
	}
}
