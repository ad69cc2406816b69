// Package validate holds the static checks run over a snippet before an
// edited response is released: sentinel misuse, call arity, undefined return
// names, and a constant-folding scan for guaranteed zero divisions.
package validate

import (
	"fmt"

	"codemend/internal/syntax"
)

// Error is a ValidationFailure: the snippet parses but breaks a project
// rule that static analysis can prove.
type Error struct {
	Kind string // sentinel | arity | return-name
	Msg  string
	Line int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s validation failed at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Kind, e.Msg)
}

// Validate parses the snippet and runs every structural check. The first
// failure is returned: *syntax.Error for unparsable source, *Error for a
// broken rule.
func Validate(snippet string) error {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return err
	}
	defer tree.Close()

	if err := checkSentinels(tree); err != nil {
		return err
	}
	if err := checkArity(tree); err != nil {
		return err
	}
	return checkReturnNames(tree)
}

// CheckSentinels flags assignments binding a sentinel-named variable to None.
func CheckSentinels(snippet string) error {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return err
	}
	defer tree.Close()
	return checkSentinels(tree)
}

// CheckArity flags calls to local functions with too few arguments.
func CheckArity(snippet string) error {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return err
	}
	defer tree.Close()
	return checkArity(tree)
}

// CheckReturnNames flags `return <name>` statements whose name was never
// bound in the enclosing function scope.
func CheckReturnNames(snippet string) error {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return err
	}
	defer tree.Close()
	return checkReturnNames(tree)
}
