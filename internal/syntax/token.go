package syntax

import "strings"

// Kind classifies a lexical token.
type Kind uint8

const (
	KindName Kind = iota
	KindNumber
	KindString
	KindOp
	KindComment
	KindSpace
	KindNewline
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindOp:
		return "op"
	case KindComment:
		return "comment"
	case KindSpace:
		return "space"
	case KindNewline:
		return "newline"
	}
	return "unknown"
}

// Token is a lexical unit pointing back at the exact source bytes it was
// scanned from. The stream produced by Tokenize covers every byte of the
// input, so Detokenize reconstructs the original text verbatim.
type Token struct {
	Kind  Kind
	Text  string
	Start int // byte offset of the first byte
	End   int // byte offset one past the last byte
	Line  int // 1-based line of the token start
}

// Detokenize concatenates token texts back into source text.
func Detokenize(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HasTrailingNewline reports whether the snippet ends with a newline.
// Editors use this to reproduce the original trailing-newline convention.
func HasTrailingNewline(s string) bool {
	return strings.HasSuffix(s, "\n")
}
