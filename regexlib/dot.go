package regexlib

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// WriteDOT writes a Graphviz rendering of a *DFA or *NFA to w.
func WriteDOT(w io.Writer, g any) error {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("    rankdir=LR;\n")

	switch t := g.(type) {

	//------------------------------------------------------------------ DFA
	case *DFA:
		for _, s := range t.States() {
			shape := "circle"
			if t.IsAccepting(s) {
				shape = "doublecircle"
			}
			fmt.Fprintf(&b, "    q%s [shape=%s];\n", s, shape)
			bySym := t.Transitions[s]
			syms := make([]rune, 0, len(bySym))
			for sym := range bySym {
				syms = append(syms, sym)
			}
			slices.Sort(syms)
			for _, sym := range syms {
				fmt.Fprintf(&b, "    q%s -> q%s [label=%s];\n", s, bySym[sym], dotLabel(string(sym)))
			}
		}
		fmt.Fprintf(&b, "    _start [shape=point]; _start -> q%s;\n", t.Initial)

	//------------------------------------------------------------------ NFA
	case *NFA:
		for id := 0; id < t.NumStates; id++ {
			shape := "circle"
			if id == t.Accept {
				shape = "doublecircle"
			}
			fmt.Fprintf(&b, "    n%d [shape=%s];\n", id, shape)
			bySym := t.Trans[id]
			syms := make([]rune, 0, len(bySym))
			for sym := range bySym {
				syms = append(syms, sym)
			}
			slices.Sort(syms)
			for _, sym := range syms {
				for _, to := range bySym[sym] {
					fmt.Fprintf(&b, "    n%d -> n%d [label=%s];\n", id, to, dotLabel(string(sym)))
				}
			}
			for _, to := range t.Eps[id] {
				fmt.Fprintf(&b, "    n%d -> n%d [label=\"ε\"];\n", id, to)
			}
		}
		fmt.Fprintf(&b, "    _start [shape=point]; _start -> n%d;\n", t.Start)

	default:
		return fmt.Errorf("regexlib: cannot render %T as DOT", g)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dotLabel(s string) string { return strconv.Quote(s) }
