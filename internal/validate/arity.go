package validate

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// signature summarises what a local def requires from its callers.
type signature struct {
	required  int
	varArgs   bool
	varKwArgs bool
}

// checkArity builds a table of locally defined functions and verifies each
// call made by simple (non-attribute) name against it. Functions with *args
// or **kwargs are skipped; calls supplying fewer arguments than the count of
// parameters without defaults fail.
func checkArity(tree *syntax.Tree) error {
	defs := map[string]signature{}
	collectSignatures(tree.Root(), tree.Source, defs)
	return walkCalls(tree.Root(), tree.Source, defs)
}

func collectSignatures(node *sitter.Node, src []byte, defs map[string]signature) {
	if node.Type() == "function_definition" {
		name := node.ChildByFieldName("name")
		params := node.ChildByFieldName("parameters")
		if name != nil && params != nil {
			defs[name.Content(src)] = summariseParams(params)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectSignatures(node.NamedChild(i), src, defs)
	}
}

func summariseParams(params *sitter.Node) signature {
	var sig signature
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier", "typed_parameter":
			sig.required++
		case "default_parameter", "typed_default_parameter":
			// optional
		case "list_splat_pattern":
			sig.varArgs = true
		case "dictionary_splat_pattern":
			sig.varKwArgs = true
		}
	}
	return sig
}

func walkCalls(node *sitter.Node, src []byte, defs map[string]signature) error {
	if node.Type() == "call" {
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Type() == "identifier" {
			name := fn.Content(src)
			if sig, ok := defs[name]; ok && !sig.varArgs && !sig.varKwArgs {
				supplied := countArguments(node.ChildByFieldName("arguments"))
				if supplied < sig.required {
					return &Error{
						Kind: "arity",
						Msg: "call to " + name + " supplies " +
							strconv.Itoa(supplied) + " argument(s) but " + strconv.Itoa(sig.required) + " are required",
						Line: int(node.StartPoint().Row) + 1,
					}
				}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := walkCalls(node.NamedChild(i), src, defs); err != nil {
			return err
		}
	}
	return nil
}

func countArguments(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if args.NamedChild(i).Type() == "comment" {
			continue
		}
		count++
	}
	return count
}

