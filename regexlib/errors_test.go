package regexlib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileErrorMessage(t *testing.T) {
	_, err := Compile("a|")
	assert.EqualError(t, err, `regexlib: compiling "a|" at offset 1: misplaced '|' or concatenation`)

	_, err = Compile("")
	assert.EqualError(t, err, `regexlib: compiling "": empty pattern`)
}

func TestCompileErrorUnwrap(t *testing.T) {
	_, err := Compile("a)")
	var ce *CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrUnmatchedParen, ce.Unwrap())
	assert.NotErrorIs(t, err, ErrMalformedExpression)
}
