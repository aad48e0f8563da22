package regexlib

import (
	"slices"
	"strconv"
)

type pair struct{ a, b string }

func unionAlphabet(a, b *DFA) []rune {
	out := append(a.Alphabet(), b.Alphabet()...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Intersect builds the product automaton accepting what both a and b accept.
func Intersect(a, b *DFA) *DFA {
	alpha := unionAlphabet(a, b)
	start := pair{a.Initial, b.Initial}
	out := &DFA{
		Initial:     "0",
		Transitions: make(map[string]map[rune]string),
		Accept:      make(map[string]bool),
	}
	names := map[pair]string{start: "0"}
	queue := []pair{start}
	for i := 0; i < len(queue); i++ {
		p := queue[i]
		name := names[p]
		if a.IsAccepting(p.a) && b.IsAccepting(p.b) {
			out.Accept[name] = true
		}
		for _, c := range alpha {
			ta, oka := a.Next(p.a, c)
			tb, okb := b.Next(p.b, c)
			if !oka || !okb {
				continue
			}
			np := pair{ta, tb}
			target, exists := names[np]
			if !exists {
				target = strconv.Itoa(len(queue))
				names[np] = target
				queue = append(queue, np)
			}
			if out.Transitions[name] == nil {
				out.Transitions[name] = make(map[rune]string)
			}
			out.Transitions[name][c] = target
		}
	}
	out.NumStates = len(queue)
	return out
}

// Shadows looks for the shortest non-empty input on which a, run in
// lockstep with b, reaches an accept state while b is still alive and has
// not accepted on any shorter prefix. When both accept on the same input,
// a wins only if winsTies is set. The returned input is the smallest such
// word in rune order.
func Shadows(a, b *DFA, winsTies bool) (string, bool) {
	type item struct {
		p    pair
		word []rune
	}
	alpha := unionAlphabet(a, b)
	start := pair{a.Initial, b.Initial}
	seen := map[pair]bool{start: true}
	queue := []item{{p: start}}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, c := range alpha {
			ta, oka := a.Next(cur.p.a, c)
			tb, okb := b.Next(cur.p.b, c)
			if !oka || !okb {
				continue
			}
			word := append(slices.Clone(cur.word), c)
			aAcc, bAcc := a.IsAccepting(ta), b.IsAccepting(tb)
			switch {
			case aAcc && (!bAcc || winsTies):
				return string(word), true
			case aAcc || bAcc:
				continue
			}
			np := pair{ta, tb}
			if !seen[np] {
				seen[np] = true
				queue = append(queue, item{p: np, word: word})
			}
		}
	}
	return "", false
}
