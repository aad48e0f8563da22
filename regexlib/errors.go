package regexlib

import (
	"errors"
	"fmt"
)

// Compilation errors. Every error returned by Compile wraps exactly one of
// these, so callers can tell them apart with errors.Is.
var (
	ErrEmptyPattern           = errors.New("empty pattern")
	ErrDanglingEscape         = errors.New("trailing backslash")
	ErrInvalidPostfixOperator = errors.New("'*' or '?' does not follow an expression")
	ErrInvalidInfixOperator   = errors.New("misplaced '|' or concatenation")
	ErrUnmatchedParen         = errors.New("unmatched parenthesis")
	ErrMalformedExpression    = errors.New("malformed expression")
)

// CompileError reports where compiling a pattern failed.
type CompileError struct {
	Pattern string
	Pos     int // byte offset into Pattern, -1 when unknown
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("regexlib: compiling %q at offset %d: %v", e.Pattern, e.Pos, e.Err)
	}
	return fmt.Sprintf("regexlib: compiling %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func compileErr(pattern string, pos int, err error) *CompileError {
	return &CompileError{Pattern: pattern, Pos: pos, Err: err}
}
