package regexlib

import (
	"unicode/utf8"
)

type tokenType int

const (
	tEOF     tokenType = iota
	tLiteral           // literal rune, escaped or not
	tUnion             // |
	tConcat            // implicit, inserted by insertConcat
	tStar              // *
	tQMark             // ?
	tLParen            // (
	tRParen            // )
)

var tokenNames = [...]string{
	tEOF:     "EOF",
	tLiteral: "LITERAL",
	tUnion:   "UNION",
	tConcat:  "CONCAT",
	tStar:    "STAR",
	tQMark:   "OPTIONAL",
	tLParen:  "LPAREN",
	tRParen:  "RPAREN",
}

func (t tokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

type token struct {
	typ tokenType
	ch  rune // for tLiteral
	pos int  // byte offset in the pattern
}

func (t token) String() string {
	if t.typ == tLiteral {
		return string(t.ch)
	}
	return t.typ.String()
}

// endsAtom reports whether t can close an operand.
func (t token) endsAtom() bool {
	switch t.typ {
	case tLiteral, tRParen, tStar, tQMark:
		return true
	}
	return false
}

// startsAtom reports whether t can open an operand.
func (t token) startsAtom() bool {
	return t.typ == tLiteral || t.typ == tLParen
}

type lexer struct {
	input string
	pos   int
}

func newLexer(s string) *lexer { return &lexer{input: s} }

func (l *lexer) next() (token, error) {
	if l.pos >= len(l.input) {
		return token{typ: tEOF, pos: l.pos}, nil
	}
	start := l.pos
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	switch r {
	case '|':
		return token{typ: tUnion, pos: start}, nil
	case '*':
		return token{typ: tStar, pos: start}, nil
	case '?':
		return token{typ: tQMark, pos: start}, nil
	case '(':
		return token{typ: tLParen, pos: start}, nil
	case ')':
		return token{typ: tRParen, pos: start}, nil
	case '\\':
		if l.pos >= len(l.input) {
			return token{}, compileErr(l.input, start, ErrDanglingEscape)
		}
		r2, s2 := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += s2
		return token{typ: tLiteral, ch: r2, pos: start}, nil
	default:
		return token{typ: tLiteral, ch: r, pos: start}, nil
	}
}

// tokenize splits pattern into tokens. It does not insert concatenation.
func tokenize(pattern string) ([]token, error) {
	if pattern == "" {
		return nil, compileErr(pattern, -1, ErrEmptyPattern)
	}
	l := newLexer(pattern)
	toks := make([]token, 0, len(pattern))
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}
