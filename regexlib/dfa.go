package regexlib

import (
	"slices"
	"strconv"
	"strings"
)

// DFA is a deterministic automaton with string-named states.
// A missing transition means the input is rejected from that state.
type DFA struct {
	Initial     string
	Transitions map[string]map[rune]string
	Accept      map[string]bool
	NumStates   int
}

// Next returns the successor of state on sym. ok is false when the
// automaton has no such transition.
func (d *DFA) Next(state string, sym rune) (next string, ok bool) {
	next, ok = d.Transitions[state][sym]
	return next, ok
}

// IsAccepting reports whether state is an accept state.
func (d *DFA) IsAccepting(state string) bool { return d.Accept[state] }

// Alphabet returns every symbol that labels a transition, in ascending order.
func (d *DFA) Alphabet() []rune {
	seen := map[rune]struct{}{}
	for _, bySym := range d.Transitions {
		for sym := range bySym {
			seen[sym] = struct{}{}
		}
	}
	out := make([]rune, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}

// States lists state names in numeric order.
func (d *DFA) States() []string {
	out := make([]string, d.NumStates)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

// Match reports whether the whole of s is accepted.
func (d *DFA) Match(s string) bool {
	state := d.Initial
	for _, r := range s {
		next, ok := d.Next(state, r)
		if !ok {
			return false
		}
		state = next
	}
	return d.IsAccepting(state)
}

/* ----------- subset construction ----------- */

type stateSet map[int]struct{}

func epsilonClosure(set stateSet, eps map[int][]int) stateSet {
	stack := make([]int, 0, len(set))
	for s := range set {
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range eps[s] {
			if _, ok := set[to]; !ok {
				set[to] = struct{}{}
				stack = append(stack, to)
			}
		}
	}
	return set
}

func move(set stateSet, sym rune, trans map[int]map[rune][]int) stateSet {
	res := make(stateSet)
	for s := range set {
		for _, to := range trans[s][sym] {
			res[to] = struct{}{}
		}
	}
	return res
}

// key is the canonical name of a state set: sorted ids joined by commas.
func (s stateSet) key() string {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func (n *NFA) alphabet() []rune {
	seen := map[rune]struct{}{}
	for _, bySym := range n.Trans {
		for sym := range bySym {
			seen[sym] = struct{}{}
		}
	}
	out := make([]rune, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}

// Determinize converts n into an equivalent DFA by subset construction.
// States are named "0", "1", ... in breadth-first discovery order; the
// result is not minimised.
func Determinize(n *NFA) *DFA {
	alpha := n.alphabet()
	d := &DFA{
		Initial:     "0",
		Transitions: make(map[string]map[rune]string),
		Accept:      make(map[string]bool),
	}

	initSet := epsilonClosure(stateSet{n.Start: {}}, n.Eps)
	names := map[string]string{initSet.key(): "0"}
	sets := []stateSet{initSet}

	for i := 0; i < len(sets); i++ {
		cur := sets[i]
		name := strconv.Itoa(i)
		if _, ok := cur[n.Accept]; ok {
			d.Accept[name] = true
		}
		for _, sym := range alpha {
			moved := move(cur, sym, n.Trans)
			if len(moved) == 0 {
				continue
			}
			clo := epsilonClosure(moved, n.Eps)
			k := clo.key()
			target, exists := names[k]
			if !exists {
				target = strconv.Itoa(len(sets))
				names[k] = target
				sets = append(sets, clo)
			}
			if d.Transitions[name] == nil {
				d.Transitions[name] = make(map[rune]string)
			}
			d.Transitions[name][sym] = target
		}
	}
	d.NumStates = len(sets)
	return d
}
