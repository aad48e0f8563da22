// Package lexer runs several compiled patterns side by side over a stream
// of symbols and reports which one, if any, accepted.
package lexer

import (
	"errors"
	"fmt"
	"log/slog"

	"keylex/internal/logutil"
	"keylex/regexlib"
)

var (
	ErrDuplicateToken  = errors.New("lexer: token already registered")
	ErrAlreadyCompiled = errors.New("lexer: already compiled")
)

// Status is the state of one slot, and the overall result of a step.
type Status int

const (
	Incomplete Status = iota
	Accept
	Dead
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "INCOMPLETE"
	case Accept:
		return "ACCEPT"
	case Dead:
		return "DEAD"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Token is a registered pattern. Seq starts at 1 and follows registration order.
type Token struct {
	Name    string
	Pattern string
	Seq     int
}

// Result is what Step reports. Token is set only when Status is Accept.
type Result struct {
	Status Status
	Token  string
}

type slot struct {
	run    *regexlib.Runner
	status Status
}

type Option func(*Lexer)

func WithLogger(l *slog.Logger) Option {
	return func(lx *Lexer) { lx.log = l }
}

// Lexer is not safe for concurrent use; see Fork.
type Lexer struct {
	tokens   []Token
	dfas     []*regexlib.DFA
	names    map[string]struct{}
	slots    []slot
	compiled bool
	log      *slog.Logger
}

func New(opts ...Option) *Lexer {
	lx := &Lexer{
		names: make(map[string]struct{}),
		log:   logutil.Discard(),
	}
	for _, o := range opts {
		o(lx)
	}
	return lx
}

// Register compiles pattern and adds it under name.
func (lx *Lexer) Register(name, pattern string) error {
	if lx.compiled {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyCompiled)
	}
	if _, dup := lx.names[name]; dup {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateToken)
	}
	d, err := regexlib.Compile(pattern)
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	lx.names[name] = struct{}{}
	lx.tokens = append(lx.tokens, Token{Name: name, Pattern: pattern, Seq: len(lx.tokens) + 1})
	lx.dfas = append(lx.dfas, d)
	lx.log.Debug("token registered", "name", name, "pattern", pattern, "states", d.NumStates)
	return nil
}

// Compile freezes registration. Calling it again is a no-op.
func (lx *Lexer) Compile() {
	if lx.compiled {
		return
	}
	lx.slots = make([]slot, len(lx.dfas))
	for i, d := range lx.dfas {
		run := regexlib.NewRunner(d)
		status := Incomplete
		if run.IsAccepting() {
			status = Accept
		}
		lx.slots[i] = slot{run: run, status: status}
	}
	lx.compiled = true
}

// Step feeds sym to every slot still in progress.
//
// Slots are tried in registration order and the first one to accept wins:
// the lexer resets and reports that token. A slot with no transition on sym
// goes dead. When no slot is left in progress the result is Dead.
func (lx *Lexer) Step(sym rune) Result {
	live := false
	for i := range lx.slots {
		s := &lx.slots[i]
		if s.status != Incomplete {
			continue
		}
		switch s.run.Step(sym) {
		case regexlib.NoTransition:
			s.status = Dead
		case regexlib.Accepted:
			name := lx.tokens[i].Name
			lx.Reset()
			lx.log.Debug("token accepted", "name", name)
			return Result{Status: Accept, Token: name}
		default:
			live = true
		}
	}
	if !live {
		return Result{Status: Dead}
	}
	return Result{Status: Incomplete}
}

// Run steps through s and stops at the first accept or dead result. Input
// that ends with some pattern still in progress is reported as Dead.
func (lx *Lexer) Run(s string) Result {
	for _, r := range s {
		if res := lx.Step(r); res.Status != Incomplete {
			return res
		}
	}
	return Result{Status: Dead}
}

// Reset rewinds every slot to its initial state and marks it in progress.
func (lx *Lexer) Reset() {
	for i := range lx.slots {
		lx.slots[i].run.Reset()
		lx.slots[i].status = Incomplete
	}
}

func (lx *Lexer) Tokens() []Token {
	out := make([]Token, len(lx.tokens))
	copy(out, lx.tokens)
	return out
}

func (lx *Lexer) Compiled() bool { return lx.compiled }

// Fork returns a compiled lexer over the same automata with its own cursors.
func (lx *Lexer) Fork() *Lexer {
	f := &Lexer{
		tokens: lx.tokens,
		dfas:   lx.dfas,
		names:  lx.names,
		log:    lx.log,
	}
	f.Compile()
	return f
}
