package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer scans Python source into a byte-complete token stream.
type lexer struct {
	src  string
	pos  int
	line int
}

// Tokenize splits snippet into a lossless token stream. Whitespace, newlines
// and comments are emitted as tokens of their own, so the stream covers every
// byte of the input. Fails with *Error on an unterminated string literal.
func Tokenize(snippet string) ([]Token, error) {
	lx := &lexer{src: snippet, line: 1}
	var tokens []Token
	for lx.pos < len(lx.src) {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (lx *lexer) next() (Token, error) {
	start := lx.pos
	startLine := lx.line
	ch := lx.src[lx.pos]

	switch {
	case ch == '\n':
		lx.pos++
		lx.line++
		return lx.emit(KindNewline, start, startLine), nil

	case ch == '\r':
		lx.pos++
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '\n' {
			lx.pos++
		}
		lx.line++
		return lx.emit(KindNewline, start, startLine), nil

	case ch == ' ' || ch == '\t' || ch == '\f':
		for lx.pos < len(lx.src) {
			c := lx.src[lx.pos]
			if c != ' ' && c != '\t' && c != '\f' {
				break
			}
			lx.pos++
		}
		return lx.emit(KindSpace, start, startLine), nil

	case ch == '#':
		for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' && lx.src[lx.pos] != '\r' {
			lx.pos++
		}
		return lx.emit(KindComment, start, startLine), nil

	case ch == '\'' || ch == '"':
		return lx.scanString(start, startLine)

	case isDigit(ch) || (ch == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1])):
		lx.scanNumber()
		return lx.emit(KindNumber, start, startLine), nil

	case isNameStart(ch):
		lx.scanName()
		// A name immediately followed by a quote may be a string prefix
		// (r'...', b"...", f'''...''' and combinations).
		if lx.pos < len(lx.src) {
			q := lx.src[lx.pos]
			if (q == '\'' || q == '"') && isStringPrefix(lx.src[start:lx.pos]) {
				return lx.scanString(start, startLine)
			}
		}
		return lx.emit(KindName, start, startLine), nil

	default:
		lx.scanOperator()
		return lx.emit(KindOp, start, startLine), nil
	}
}

func (lx *lexer) emit(kind Kind, start, line int) Token {
	return Token{Kind: kind, Text: lx.src[start:lx.pos], Start: start, End: lx.pos, Line: line}
}

// scanString consumes a string literal. start points at the prefix (if any);
// lx.pos points at the opening quote.
func (lx *lexer) scanString(start, startLine int) (Token, error) {
	quote := lx.src[lx.pos]
	lx.pos++
	triple := false
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == quote && lx.src[lx.pos+1] == quote {
		triple = true
		lx.pos += 2
	}

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\' && lx.pos+1 < len(lx.src):
			if lx.src[lx.pos+1] == '\n' {
				lx.line++
			}
			lx.pos += 2
		case c == quote:
			if !triple {
				lx.pos++
				return lx.emit(KindString, start, startLine), nil
			}
			if strings.HasPrefix(lx.src[lx.pos:], string([]byte{quote, quote, quote})) {
				lx.pos += 3
				return lx.emit(KindString, start, startLine), nil
			}
			lx.pos++
		case c == '\n':
			if !triple {
				return Token{}, &Error{Line: startLine, Msg: "unterminated string literal"}
			}
			lx.line++
			lx.pos++
		default:
			lx.pos++
		}
	}
	return Token{}, &Error{Line: startLine, Msg: "unterminated string literal"}
}

func (lx *lexer) scanNumber() {
	src := lx.src
	// Radix-prefixed integers.
	if src[lx.pos] == '0' && lx.pos+1 < len(src) {
		switch src[lx.pos+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			lx.pos += 2
			for lx.pos < len(src) && (isHexDigit(src[lx.pos]) || src[lx.pos] == '_') {
				lx.pos++
			}
			return
		}
	}
	digits := func() {
		for lx.pos < len(src) && (isDigit(src[lx.pos]) || src[lx.pos] == '_') {
			lx.pos++
		}
	}
	digits()
	if lx.pos < len(src) && src[lx.pos] == '.' {
		lx.pos++
		digits()
	}
	if lx.pos < len(src) && (src[lx.pos] == 'e' || src[lx.pos] == 'E') {
		next := lx.pos + 1
		if next < len(src) && (src[next] == '+' || src[next] == '-') {
			next++
		}
		if next < len(src) && isDigit(src[next]) {
			lx.pos = next
			digits()
		}
	}
	if lx.pos < len(src) && (src[lx.pos] == 'j' || src[lx.pos] == 'J') {
		lx.pos++
	}
}

func (lx *lexer) scanName() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c < utf8.RuneSelf {
			if !isNameContinue(c) {
				return
			}
			lx.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		lx.pos += size
	}
}

// multiByteOps lists Python operators longer than one byte, longest first.
var multiByteOps = []string{
	"**=", "//=", ">>=", "<<=", "...", "!=", ">=", "<=", "==",
	"->", ":=", "+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
	"**", "//", ">>", "<<",
}

func (lx *lexer) scanOperator() {
	rest := lx.src[lx.pos:]
	for _, op := range multiByteOps {
		if strings.HasPrefix(rest, op) {
			lx.pos += len(op)
			return
		}
	}
	_, size := utf8.DecodeRuneInString(rest)
	lx.pos += size
}

// isStringPrefix reports whether text is a valid Python string prefix
// (r, b, u, f and two-letter combinations, any case).
func isStringPrefix(text string) bool {
	if len(text) == 0 || len(text) > 2 {
		return false
	}
	seen := map[byte]bool{}
	for i := 0; i < len(text); i++ {
		c := text[i] | 0x20 // lowercase
		if c != 'r' && c != 'b' && c != 'u' && c != 'f' {
			return false
		}
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isNameContinue(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

// Error reports unparsable source with its position.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Msg)
}
