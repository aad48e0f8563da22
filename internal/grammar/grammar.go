// Package grammar reads token definition files:
//
//	// chess moves
//	let files = "(a|b|c|d|e|f|g|h)";
//	let ranks = "(1|2|3|4|5|6|7|8)";
//	token king = "(t|T)" + "(x)?" + files + ranks;
//
// String literals are regex fragments. '+' concatenates, '|' unites,
// parentheses group and a trailing '?' or '*' applies to the operand before
// it. Every operand is parenthesised before it is combined.
package grammar

import (
	"errors"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"keylex/regexlib"
)

var (
	ErrUndefined = errors.New("undefined fragment")
	ErrDuplicate = errors.New("duplicate definition")
)

type File struct {
	Decls []*Decl `parser:"@@*"`
}

type Decl struct {
	Let   *Def `parser:"'let' @@ ';'"`
	Token *Def `parser:"| 'token' @@ ';'"`
}

type Def struct {
	Pos  lexer.Position
	Name string `parser:"@Ident '='"`
	Expr *Alt   `parser:"@@"`
}

type Alt struct {
	Seqs []*Seq `parser:"@@ ( '|' @@ )*"`
}

type Seq struct {
	Terms []*Term `parser:"@@ ( '+' @@ )*"`
}

type Term struct {
	Atom *Atom  `parser:"@@"`
	Op   string `parser:"@( '?' | '*' )?"`
}

type Atom struct {
	Pos   lexer.Position
	Lit   *string `parser:"@String"`
	Ref   *string `parser:"| @Ident"`
	Group *Alt    `parser:"| '(' @@ ')'"`
}

// Rule is one token declaration with its fragments expanded.
type Rule struct {
	Name    string
	Pattern string
}

var parser = participle.MustBuild[File](participle.Unquote("String"))

func Parse(filename, src string) (*File, error) {
	return parser.ParseString(filename, src)
}

// Load parses the file at path and expands its tokens.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(path, string(data))
	if err != nil {
		return nil, err
	}
	return f.Rules()
}

// Rules expands every token in declaration order. A fragment must be
// declared before it is used.
func (f *File) Rules() ([]Rule, error) {
	sc := newScope()
	var out []Rule
	for _, d := range f.Decls {
		switch {
		case d.Let != nil:
			p, err := d.Let.Expr.eval(sc)
			if err != nil {
				return nil, err
			}
			if err := sc.let(d.Let.Pos, d.Let.Name, p); err != nil {
				return nil, err
			}
		case d.Token != nil:
			if err := sc.token(d.Token.Pos, d.Token.Name); err != nil {
				return nil, err
			}
			p, err := d.Token.Expr.eval(sc)
			if err != nil {
				return nil, err
			}
			out = append(out, Rule{Name: d.Token.Name, Pattern: p})
		}
	}
	return out, nil
}

func (a *Alt) eval(sc *scope) (string, error) {
	parts := make([]string, len(a.Seqs))
	for i, s := range a.Seqs {
		p, err := s.eval(sc)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return regexlib.Unite(parts...), nil
}

func (s *Seq) eval(sc *scope) (string, error) {
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		p, err := t.eval(sc)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return regexlib.Concatenate(parts...), nil
}

func (t *Term) eval(sc *scope) (string, error) {
	p, err := t.Atom.eval(sc)
	if err != nil || t.Op == "" {
		return p, err
	}
	return "(" + p + ")" + t.Op, nil
}

func (t *Atom) eval(sc *scope) (string, error) {
	switch {
	case t.Lit != nil:
		return *t.Lit, nil
	case t.Ref != nil:
		return sc.lookup(t.Pos, *t.Ref)
	default:
		p, err := t.Group.eval(sc)
		if err != nil {
			return "", err
		}
		return "(" + p + ")", nil
	}
}
