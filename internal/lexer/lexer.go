package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/token"
)

// Lexer turns source bytes into a pull-based token stream with one token
// of lookahead.
type Lexer struct {
	src  []byte
	path string
	i    int
	line int
	col  int
	pend *token.Token
	last token.Token
}

func New(path string, src []byte) *Lexer {
	return &Lexer{src: src, path: path, line: 1, col: 1}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	if l.pend == nil {
		t := l.scan()
		l.pend = &t
	}
	return *l.pend
}

// Next consumes and returns the next token.
func (l *Lexer) Next() token.Token {
	t := l.Peek()
	if t.Kind != token.EOF {
		l.pend = nil
	}
	l.last = t
	return t
}

func (l *Lexer) IsNotEndOfInput() bool {
	return l.Peek().Kind != token.EOF
}

func (l *Lexer) Path() string { return l.path }

// Errorf builds a syntax error positioned at the upcoming token.
func (l *Lexer) Errorf(format string, args ...any) error {
	t := l.Peek()
	return &errdef.SyntaxError{
		Pos:        t.Pos,
		Token:      t.Value,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: t.Kind == token.EOF,
	}
}

func (l *Lexer) scan() token.Token {
	for {
		if l.atEnd() {
			return token.Token{Kind: token.EOF, Pos: l.pos()}
		}
		ch := l.peekByte()
		if isSpace(ch) {
			l.read()
			continue
		}
		if ch == '#' {
			l.skipComment()
			continue
		}
		break
	}

	p := l.pos()
	ch := l.peekByte()

	switch ch {
	case '(', ')', '{', '}', '[', ']', ',', ':', ';':
		l.read()
		return l.emit(token.Punctuation, string(ch), p)
	case '+', '-', '*', '/', '%':
		l.read()
		return l.emit(token.Operator, string(ch), p)
	case '=', '!', '<', '>':
		l.read()
		if l.peekByte() == '=' {
			l.read()
			return l.emit(token.Operator, string(ch)+"=", p)
		}
		return l.emit(token.Operator, string(ch), p)
	case '&', '|':
		l.read()
		if l.peekByte() == ch {
			l.read()
			return l.emit(token.Operator, string(ch)+string(ch), p)
		}
		return l.illegal(p, fmt.Sprintf("unexpected %q", ch))
	case '"', '\'':
		str, ok := l.scanString()
		if !ok {
			return l.illegal(p, "unterminated string")
		}
		return l.emit(token.String, str, p)
	}

	if r, _ := utf8.DecodeRune(l.src[l.i:]); isIdentStart(r) {
		word := l.scanIdent()
		return l.emit(token.Lookup(word), word, p)
	}

	if isDigit(ch) {
		return l.emit(token.Number, l.scanNumber(), p)
	}

	r, size := utf8.DecodeRune(l.src[l.i:])
	l.advance(size)
	return l.illegal(p, fmt.Sprintf("unexpected %q", r))
}

func (l *Lexer) pos() token.Pos {
	return token.Pos{Path: l.path, Line: l.line, Col: l.col}
}

func (l *Lexer) emit(k token.Kind, lit string, p token.Pos) token.Token {
	return token.Token{Kind: k, Value: lit, Pos: p}
}

func (l *Lexer) illegal(p token.Pos, msg string) token.Token {
	return token.Token{Kind: token.Illegal, Value: msg, Pos: p}
}

func (l *Lexer) atEnd() bool {
	return l.i >= len(l.src)
}

// peekByte returns 0 at end of input; callers that must tell that apart
// from a NUL byte check atEnd first.
func (l *Lexer) peekByte() byte {
	if l.i >= len(l.src) {
		return 0
	}
	return l.src[l.i]
}

func (l *Lexer) read() byte {
	if l.i >= len(l.src) {
		return 0
	}
	b := l.src[l.i]
	l.i++
	if b == '\r' {
		if l.i < len(l.src) && l.src[l.i] == '\n' {
			l.i++
		}
		l.line++
		l.col = 1
		return '\n'
	}
	if b == '\n' {
		l.line++
		l.col = 1
		return '\n'
	}
	l.col++
	return b
}

func (l *Lexer) skipComment() {
	for !l.atEnd() {
		ch := l.peekByte()
		if ch == '\n' || ch == '\r' {
			return
		}
		l.read()
	}
}

// scanIdent reads letters, digits, underscores and combining marks so
// names written with decomposed tone marks stay whole. Columns count bytes.
func (l *Lexer) scanIdent() string {
	start := l.i
	for !l.atEnd() {
		r, size := utf8.DecodeRune(l.src[l.i:])
		if !isIdent(r) {
			break
		}
		l.advance(size)
	}
	return string(l.src[start:l.i])
}

func (l *Lexer) advance(n int) {
	for range n {
		l.read()
	}
}

func (l *Lexer) scanNumber() string {
	start := l.i
	l.read()
	for isDigit(l.peekByte()) {
		l.read()
	}
	if l.peekByte() == '.' && l.i+1 < len(l.src) && isDigit(l.src[l.i+1]) {
		l.read()
		for isDigit(l.peekByte()) {
			l.read()
		}
	}
	return string(l.src[start:l.i])
}

func (l *Lexer) scanString() (string, bool) {
	q := l.read()
	var out []byte
	for {
		if l.atEnd() {
			return "", false
		}
		ch := l.peekByte()
		if ch == '\n' || ch == '\r' {
			return "", false
		}
		l.read()
		if ch == q {
			return string(out), true
		}
		if ch != '\\' {
			out = append(out, ch)
			continue
		}
		if l.atEnd() {
			return "", false
		}
		esc := l.read()
		switch esc {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		default:
			out = append(out, esc)
		}
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdent(r rune) bool {
	return isIdentStart(r) || unicode.Is(unicode.Mn, r) || (r >= '0' && r <= '9')
}
