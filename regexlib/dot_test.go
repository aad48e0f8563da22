package regexlib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDOTDFA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, newRE(t, "a")))
	want := `digraph G {
    rankdir=LR;
    q0 [shape=circle];
    q0 -> q1 [label="a"];
    q1 [shape=doublecircle];
    _start [shape=point]; _start -> q0;
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteDOTNFA(t *testing.T) {
	n, err := CompileNFA("a*")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, n))
	out := buf.String()
	assert.Contains(t, out, `n0 -> n1 [label="a"];`)
	assert.Contains(t, out, `n2 -> n0 [label="ε"];`)
	assert.Contains(t, out, "n3 [shape=doublecircle];")
	assert.Contains(t, out, "_start -> n2;")
	assert.Equal(t, 1, strings.Count(out, "doublecircle"))
}

func TestWriteDOTQuotesLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, newRE(t, `"`)))
	assert.Contains(t, buf.String(), `[label="\""]`)
}

func TestWriteDOTUnsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteDOT(&buf, "nope"))
	assert.Zero(t, buf.Len())
}
