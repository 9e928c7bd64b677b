package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TokenType classifies a lexical token of PGN text.
type TokenType int

const (
	EOFToken TokenType = iota
	TagStart
	TagEnd
	StringToken
	SymbolToken // tag names and move text
	MoveNumber
	Dot
	NAGToken
	CommentToken
	RAVStart
	RAVEnd
	ResultToken
)

var tokenNames = [...]string{
	EOFToken:     "EOF",
	TagStart:     "[",
	TagEnd:       "]",
	StringToken:  "string",
	SymbolToken:  "symbol",
	MoveNumber:   "move number",
	Dot:          ".",
	NAGToken:     "NAG",
	CommentToken: "comment",
	RAVStart:     "(",
	RAVEnd:       ")",
	ResultToken:  "result",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "unknown"
}

// Token is a lexical token together with the line it started on.
type Token struct {
	Type TokenType
	Text string
	Line int
}

// Lexer tokenizes PGN input.
type Lexer struct {
	reader  *bufio.Reader
	lineNum int
	bol     bool // at the beginning of a line
}

// NewLexer creates a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r), lineNum: 1, bol: true}
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	l.bol = r == '\n'
	if r == '\n' {
		l.lineNum++
	}
	return r, true
}

func (l *Lexer) unread() {
	_ = l.reader.UnreadRune()
}

func (l *Lexer) peek() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	_ = l.reader.UnreadRune()
	return r, true
}

// isSymbolRune reports whether r can continue a symbol.
func isSymbolRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_+#=:-/!?", r)
}

// NextToken returns the next token. Escape lines ('%' in the first column)
// are skipped. Malformed input yields an error wrapping ErrParseFailure.
func (l *Lexer) NextToken() (Token, error) {
	for {
		bol := l.bol
		r, ok := l.read()
		if !ok {
			return Token{Type: EOFToken, Line: l.lineNum}, nil
		}
		line := l.lineNum

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			continue
		case r == '%' && bol:
			l.skipLine()
			continue
		case r == '[':
			return Token{Type: TagStart, Text: "[", Line: line}, nil
		case r == ']':
			return Token{Type: TagEnd, Text: "]", Line: line}, nil
		case r == '(':
			return Token{Type: RAVStart, Text: "(", Line: line}, nil
		case r == ')':
			return Token{Type: RAVEnd, Text: ")", Line: line}, nil
		case r == '.':
			return Token{Type: Dot, Text: ".", Line: line}, nil
		case r == '*':
			return Token{Type: ResultToken, Text: "*", Line: line}, nil
		case r == '"':
			s, err := l.readString(line)
			return Token{Type: StringToken, Text: s, Line: line}, err
		case r == '{':
			s, err := l.readBraceComment(line)
			return Token{Type: CommentToken, Text: s, Line: line}, err
		case r == ';':
			return Token{Type: CommentToken, Text: l.skipLine(), Line: line}, nil
		case r == '$':
			digits := l.readWhile(func(r rune) bool { return r >= '0' && r <= '9' })
			if digits == "" {
				return Token{}, fmt.Errorf("%w: line %d: NAG without a number", ErrParseFailure, line)
			}
			return Token{Type: NAGToken, Text: "$" + digits, Line: line}, nil
		case isSymbolRune(r):
			l.unread()
			return l.classify(l.readWhile(isSymbolRune), line), nil
		default:
			return Token{}, fmt.Errorf("%w: line %d: unexpected character %q", ErrParseFailure, line, r)
		}
	}
}

func (l *Lexer) classify(s string, line int) Token {
	switch s {
	case "1-0", "0-1", "1/2-1/2":
		return Token{Type: ResultToken, Text: s, Line: line}
	}
	if strings.Trim(s, "0123456789") == "" {
		return Token{Type: MoveNumber, Text: s, Line: line}
	}
	return Token{Type: SymbolToken, Text: s, Line: line}
}

func (l *Lexer) readWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for {
		r, ok := l.peek()
		if !ok || !pred(r) {
			return sb.String()
		}
		l.read()
		sb.WriteRune(r)
	}
}

func (l *Lexer) skipLine() string {
	var sb strings.Builder
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return sb.String()
		}
		sb.WriteRune(r)
	}
}

func (l *Lexer) readString(line int) (string, error) {
	var sb strings.Builder
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return sb.String(), fmt.Errorf("%w: line %d: unterminated string", ErrParseFailure, line)
		}
		switch r {
		case '"':
			return sb.String(), nil
		case '\\':
			next, ok := l.read()
			if !ok {
				return sb.String(), fmt.Errorf("%w: line %d: unterminated string", ErrParseFailure, line)
			}
			sb.WriteRune(next)
		default:
			sb.WriteRune(r)
		}
	}
}

func (l *Lexer) readBraceComment(line int) (string, error) {
	var sb strings.Builder
	for {
		r, ok := l.read()
		if !ok {
			return sb.String(), fmt.Errorf("%w: line %d: unterminated comment", ErrParseFailure, line)
		}
		if r == '}' {
			return strings.TrimSpace(sb.String()), nil
		}
		sb.WriteRune(r)
	}
}
