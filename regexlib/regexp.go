package regexlib

import "strings"

/* ----------- Compilation ----------- */

// Compile turns pattern into a DFA. The grammar is literals, '|',
// implicit concatenation, '*', '?', parentheses and '\' escapes.
// Errors are *CompileError values.
func Compile(pattern string) (*DFA, error) {
	n, err := CompileNFA(pattern)
	if err != nil {
		return nil, err
	}
	return Determinize(n), nil
}

func MustCompile(pattern string) *DFA {
	d, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return d
}

/* ----------- Pattern composition ----------- */

// Unite returns a pattern matching any of patterns. With no patterns the
// result is "", which Compile rejects with ErrEmptyPattern.
func Unite(patterns ...string) string {
	return join(patterns, "|")
}

// Concatenate returns a pattern matching patterns in sequence. With no
// patterns the result is "", which Compile rejects with ErrEmptyPattern.
func Concatenate(patterns ...string) string {
	return join(patterns, "")
}

func join(patterns []string, sep string) string {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, sep)
}

// QuoteMeta escapes every operator character in s.
func QuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '|', '*', '?', '(', ')', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
