package regexlib

import (
	"fmt"
	"strconv"
	"strings"
)

// Minimize returns the smallest DFA accepting the same language as d.
//
// Classes are refined Moore-style: two states stay together while they
// agree on acceptance and, for every symbol, on the class of their
// successor. A missing transition counts as its own class, so the partial
// transition function needs no explicit dead state.
func Minimize(d *DFA) *DFA {
	if d == nil || d.NumStates == 0 {
		return d
	}
	states := d.States()
	alpha := d.Alphabet()

	class := make(map[string]int, len(states))
	for _, s := range states {
		if d.IsAccepting(s) {
			class[s] = 1
		}
	}
	count := countClasses(class)

	for {
		next := make(map[string]int, len(states))
		ids := map[string]int{}
		for _, s := range states {
			var sig strings.Builder
			fmt.Fprintf(&sig, "%d", class[s])
			for _, sym := range alpha {
				if to, ok := d.Next(s, sym); ok {
					fmt.Fprintf(&sig, ",%d", class[to])
				} else {
					sig.WriteString(",-")
				}
			}
			id, ok := ids[sig.String()]
			if !ok {
				id = len(ids)
				ids[sig.String()] = id
			}
			next[s] = id
		}
		class = next
		if len(ids) == count {
			break
		}
		count = len(ids)
	}

	// one representative per class
	rep := map[int]string{}
	for _, s := range states {
		if _, ok := rep[class[s]]; !ok {
			rep[class[s]] = s
		}
	}

	out := &DFA{
		Initial:     "0",
		Transitions: make(map[string]map[rune]string),
		Accept:      make(map[string]bool),
	}
	names := map[int]string{class[d.Initial]: "0"}
	queue := []int{class[d.Initial]}
	for i := 0; i < len(queue); i++ {
		c := queue[i]
		name := names[c]
		src := rep[c]
		if d.IsAccepting(src) {
			out.Accept[name] = true
		}
		for _, sym := range alpha {
			to, ok := d.Next(src, sym)
			if !ok {
				continue
			}
			tc := class[to]
			target, seen := names[tc]
			if !seen {
				target = strconv.Itoa(len(queue))
				names[tc] = target
				queue = append(queue, tc)
			}
			if out.Transitions[name] == nil {
				out.Transitions[name] = make(map[rune]string)
			}
			out.Transitions[name][sym] = target
		}
	}
	out.NumStates = len(queue)
	return out
}

func countClasses(class map[string]int) int {
	seen := map[int]struct{}{}
	for _, c := range class {
		seen[c] = struct{}{}
	}
	return len(seen)
}
