package validate

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// checkReturnNames verifies, per function scope, that every `return <name>`
// names something bound in that scope: a parameter, an assignment target, an
// augmented-assignment target, a for-loop target, or a with-statement alias.
// Nested function and class scopes are analysed on their own.
func checkReturnNames(tree *syntax.Tree) error {
	return walkFunctions(tree.Root(), tree.Source)
}

func walkFunctions(node *sitter.Node, src []byte) error {
	if node.Type() == "function_definition" {
		if err := checkFunctionReturns(node, src); err != nil {
			return err
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := walkFunctions(node.NamedChild(i), src); err != nil {
			return err
		}
	}
	return nil
}

func checkFunctionReturns(fn *sitter.Node, src []byte) error {
	bound := map[string]struct{}{}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		collectIdentifiers(params, src, bound)
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	collectBindings(body, src, bound)
	return verifyReturns(body, src, bound)
}

// collectBindings records every name the scope binds, skipping nested defs
// and classes which open their own scopes.
func collectBindings(node *sitter.Node, src []byte, bound map[string]struct{}) {
	switch node.Type() {
	case "function_definition", "class_definition":
		// The nested definition's own name is bound in this scope.
		if name := node.ChildByFieldName("name"); name != nil {
			bound[name.Content(src)] = struct{}{}
		}
		return
	case "assignment", "augmented_assignment":
		if left := node.ChildByFieldName("left"); left != nil {
			collectIdentifiers(left, src, bound)
		}
	case "named_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			collectIdentifiers(name, src, bound)
		}
	case "for_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			collectIdentifiers(left, src, bound)
		}
	case "as_pattern":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			collectIdentifiers(alias, src, bound)
		}
	case "global_statement", "nonlocal_statement":
		collectIdentifiers(node, src, bound)
	case "import_statement", "import_from_statement":
		collectImportedNames(node, src, bound)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectBindings(node.NamedChild(i), src, bound)
	}
}

// collectIdentifiers records plain identifiers under node, following tuple
// and list patterns but not subscript or attribute targets (those mutate
// existing objects rather than bind names).
func collectIdentifiers(node *sitter.Node, src []byte, bound map[string]struct{}) {
	switch node.Type() {
	case "identifier":
		bound[node.Content(src)] = struct{}{}
		return
	case "subscript", "attribute":
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectIdentifiers(node.NamedChild(i), src, bound)
	}
}

func collectImportedNames(node *sitter.Node, src []byte, bound map[string]struct{}) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				bound[alias.Content(src)] = struct{}{}
			}
		case "dotted_name":
			bound[syntax.BaseName(child.Content(src))] = struct{}{}
		}
	}
}

// verifyReturns checks return statements of this scope only.
func verifyReturns(node *sitter.Node, src []byte, bound map[string]struct{}) error {
	switch node.Type() {
	case "function_definition", "class_definition":
		return nil
	case "return_statement":
		if node.NamedChildCount() == 1 && node.NamedChild(0).Type() == "identifier" {
			name := node.NamedChild(0).Content(src)
			if _, ok := bound[name]; !ok {
				return &Error{
					Kind: "return-name",
					Msg:  "return of name " + name + " which is never bound in this function",
					Line: int(node.StartPoint().Row) + 1,
				}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := verifyReturns(node.NamedChild(i), src, bound); err != nil {
			return err
		}
	}
	return nil
}
