package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// scope holds the fragments declared so far and the token names taken.
type scope struct {
	fragments map[string]string
	tokens    map[string]bool
}

func newScope() *scope {
	return &scope{fragments: map[string]string{}, tokens: map[string]bool{}}
}

func (s *scope) let(pos lexer.Position, name, pattern string) error {
	if _, ok := s.fragments[name]; ok {
		return fmt.Errorf("%s: %w: let %s", pos, ErrDuplicate, name)
	}
	s.fragments[name] = pattern
	return nil
}

func (s *scope) token(pos lexer.Position, name string) error {
	if s.tokens[name] {
		return fmt.Errorf("%s: %w: token %s", pos, ErrDuplicate, name)
	}
	s.tokens[name] = true
	return nil
}

func (s *scope) lookup(pos lexer.Position, name string) (string, error) {
	p, ok := s.fragments[name]
	if !ok {
		return "", fmt.Errorf("%s: %w %s", pos, ErrUndefined, name)
	}
	return p, nil
}
