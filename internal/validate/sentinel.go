package validate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// checkSentinels walks every assignment and rejects a sentinel-named target
// bound to the literal None. Sentinels must be unique objects; None invites
// identity collisions with legitimate None values.
func checkSentinels(tree *syntax.Tree) error {
	return walkSentinels(tree.Root(), tree.Source)
}

func walkSentinels(node *sitter.Node, src []byte) error {
	if node.Type() == "assignment" {
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left != nil && right != nil && right.Type() == "none" {
			if name, ok := sentinelTarget(left, src); ok {
				return &Error{
					Kind: "sentinel",
					Msg:  "sentinel variable " + name + " must not be initialised to None; use a unique object() instead",
					Line: int(node.StartPoint().Row) + 1,
				}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := walkSentinels(node.NamedChild(i), src); err != nil {
			return err
		}
	}
	return nil
}

// sentinelTarget reports the first assignment target whose name contains
// "sentinel", case-insensitively.
func sentinelTarget(left *sitter.Node, src []byte) (string, bool) {
	if left.Type() == "identifier" {
		name := left.Content(src)
		if strings.Contains(strings.ToLower(name), "sentinel") {
			return name, true
		}
		return "", false
	}
	for i := 0; i < int(left.NamedChildCount()); i++ {
		if name, ok := sentinelTarget(left.NamedChild(i), src); ok {
			return name, true
		}
	}
	return "", false
}
