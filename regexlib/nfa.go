package regexlib

import "slices"

// NFA is a Thompson automaton with a single start and a single accept state.
// State ids are dense, starting at 0. Destination lists hold no duplicates.
type NFA struct {
	Start     int
	Accept    int
	Trans     map[int]map[rune][]int // symbol edges
	Eps       map[int][]int          // epsilon edges
	NumStates int
}

type frag struct {
	start, accept int
}

// nfaBuilder owns the id counter of one construction.
type nfaBuilder struct {
	pattern string
	nfa     *NFA
	stack   []frag
}

func newNFABuilder(pattern string) *nfaBuilder {
	return &nfaBuilder{
		pattern: pattern,
		nfa: &NFA{
			Trans: make(map[int]map[rune][]int),
			Eps:   make(map[int][]int),
		},
	}
}

func (b *nfaBuilder) newState() int {
	id := b.nfa.NumStates
	b.nfa.NumStates++
	return id
}

func (b *nfaBuilder) addSymbol(from int, sym rune, to int) {
	bySym, ok := b.nfa.Trans[from]
	if !ok {
		bySym = make(map[rune][]int)
		b.nfa.Trans[from] = bySym
	}
	if !slices.Contains(bySym[sym], to) {
		bySym[sym] = append(bySym[sym], to)
	}
}

func (b *nfaBuilder) addEpsilon(from, to int) {
	if !slices.Contains(b.nfa.Eps[from], to) {
		b.nfa.Eps[from] = append(b.nfa.Eps[from], to)
	}
}

func (b *nfaBuilder) push(f frag) { b.stack = append(b.stack, f) }

func (b *nfaBuilder) pop() frag {
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return f
}

func (b *nfaBuilder) need(n int, tok token) error {
	if len(b.stack) < n {
		return compileErr(b.pattern, tok.pos, ErrMalformedExpression)
	}
	return nil
}

func (b *nfaBuilder) apply(tok token) error {
	switch tok.typ {
	case tLiteral:
		s1, s2 := b.newState(), b.newState()
		b.addSymbol(s1, tok.ch, s2)
		b.push(frag{s1, s2})

	case tConcat:
		if err := b.need(2, tok); err != nil {
			return err
		}
		right, left := b.pop(), b.pop()
		b.addEpsilon(left.accept, right.start)
		b.push(frag{left.start, right.accept})

	case tUnion:
		if err := b.need(2, tok); err != nil {
			return err
		}
		right, left := b.pop(), b.pop()
		s, a := b.newState(), b.newState()
		b.addEpsilon(s, left.start)
		b.addEpsilon(s, right.start)
		b.addEpsilon(left.accept, a)
		b.addEpsilon(right.accept, a)
		b.push(frag{s, a})

	case tStar:
		if err := b.need(1, tok); err != nil {
			return err
		}
		f := b.pop()
		s, a := b.newState(), b.newState()
		b.addEpsilon(s, f.start)
		b.addEpsilon(s, a)
		b.addEpsilon(f.accept, f.start)
		b.addEpsilon(f.accept, a)
		b.push(frag{s, a})

	case tQMark:
		if err := b.need(1, tok); err != nil {
			return err
		}
		f := b.pop()
		s, a := b.newState(), b.newState()
		b.addEpsilon(s, f.start)
		b.addEpsilon(s, a)
		b.addEpsilon(f.accept, a)
		b.push(frag{s, a})

	default:
		return compileErr(b.pattern, tok.pos, ErrMalformedExpression)
	}
	return nil
}

// buildNFA runs Thompson's construction over a postfix token stream.
func buildNFA(pattern string, post []token) (*NFA, error) {
	b := newNFABuilder(pattern)
	for _, tok := range post {
		if err := b.apply(tok); err != nil {
			return nil, err
		}
	}
	if len(b.stack) != 1 {
		return nil, compileErr(pattern, -1, ErrMalformedExpression)
	}
	root := b.stack[0]
	b.nfa.Start, b.nfa.Accept = root.start, root.accept
	return b.nfa, nil
}

// CompileNFA parses pattern and returns its Thompson NFA.
func CompileNFA(pattern string) (*NFA, error) {
	post, err := postfix(pattern)
	if err != nil {
		return nil, err
	}
	return buildNFA(pattern, post)
}
