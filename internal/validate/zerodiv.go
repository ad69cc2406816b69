package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codemend/internal/syntax"
)

// RuntimeIssue is a static-analysis finding that would fail at runtime.
type RuntimeIssue struct {
	IssueType string `json:"issue_type"`
	Message   string `json:"message"`
	Line      int    `json:"line"` // 1-based
	Col       int    `json:"col"`  // 0-based
}

var zeroDivMessages = map[string]string{
	"/":  "Detected division by zero.",
	"//": "Detected floor division by zero.",
	"%":  "Detected modulo by zero.",
}

// ScanRuntimeIssues walks binary operations and reports every division,
// floor division or modulo whose right operand statically evaluates to zero.
// `False` coerces to 0 and constant expressions such as `3 - 3` fold.
// Findings come back sorted by line, then column.
func ScanRuntimeIssues(snippet string) ([]RuntimeIssue, error) {
	tree, err := syntax.Parse(snippet)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var issues []RuntimeIssue
	scanZeroDivision(tree.Root(), tree.Source, &issues)
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Col < issues[j].Col
	})
	return issues, nil
}

func scanZeroDivision(node *sitter.Node, src []byte, issues *[]RuntimeIssue) {
	if node.Type() == "binary_operator" {
		op := operatorText(node, src)
		if msg, risky := zeroDivMessages[op]; risky {
			if right := node.ChildByFieldName("right"); right != nil {
				if value, ok := foldConst(right, src); ok && value == 0 {
					point := node.StartPoint()
					*issues = append(*issues, RuntimeIssue{
						IssueType: "ZeroDivisionError",
						Message:   msg,
						Line:      int(point.Row) + 1,
						Col:       int(point.Column),
					})
				}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		scanZeroDivision(node.NamedChild(i), src, issues)
	}
}

func operatorText(node *sitter.Node, src []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return op.Content(src)
	}
	return ""
}

// foldConst evaluates a constant-foldable numeric expression. Booleans
// coerce to 0/1 as Python does. Folding refuses anything it cannot prove.
func foldConst(node *sitter.Node, src []byte) (float64, bool) {
	switch node.Type() {
	case "integer":
		text := strings.ReplaceAll(node.Content(src), "_", "")
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	case "float":
		text := strings.ReplaceAll(node.Content(src), "_", "")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case "true":
		return 1, true
	case "false":
		return 0, true
	case "parenthesized_expression":
		if node.NamedChildCount() != 1 {
			return 0, false
		}
		return foldConst(node.NamedChild(0), src)
	case "unary_operator":
		arg := node.ChildByFieldName("argument")
		if arg == nil {
			return 0, false
		}
		value, ok := foldConst(arg, src)
		if !ok {
			return 0, false
		}
		switch operatorText(node, src) {
		case "-":
			return -value, true
		case "+":
			return value, true
		}
		return 0, false
	case "binary_operator":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left == nil || right == nil {
			return 0, false
		}
		lv, lok := foldConst(left, src)
		rv, rok := foldConst(right, src)
		if !lok || !rok {
			return 0, false
		}
		switch operatorText(node, src) {
		case "+":
			return lv + rv, true
		case "-":
			return lv - rv, true
		case "*":
			return lv * rv, true
		case "/":
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case "//":
			if rv == 0 {
				return 0, false
			}
			// Python floors, it does not truncate toward zero.
			return math.Floor(lv / rv), true
		case "%":
			if rv == 0 {
				return 0, false
			}
			// Python's modulo takes the divisor's sign.
			return lv - rv*math.Floor(lv/rv), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// FormatRuntimeIssues renders findings as one diagnostic line each, the way
// the orchestrator surfaces them to a calling agent.
func FormatRuntimeIssues(issues []RuntimeIssue) string {
	if len(issues) == 0 {
		return "[runtime_error] none detected"
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = fmt.Sprintf("[runtime_error] %s at line %d, column %d - %s",
			issue.IssueType, issue.Line, issue.Col, issue.Message)
	}
	return strings.Join(lines, "\n")
}
