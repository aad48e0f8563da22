package lexer

import "keylex/regexlib"

// Conflict records an input on which Winner accepts before Loser can, so
// Loser never matches anything starting with Input.
type Conflict struct {
	Winner string
	Loser  string
	Input  string
}

// Conflicts lists, for every ordered pair of tokens, the shortest input on
// which the first shadows the second. Ties go to the earlier registration.
func (lx *Lexer) Conflicts() []Conflict {
	var out []Conflict
	for i, a := range lx.dfas {
		for j, b := range lx.dfas {
			if i == j {
				continue
			}
			if in, ok := regexlib.Shadows(a, b, i < j); ok {
				out = append(out, Conflict{
					Winner: lx.tokens[i].Name,
					Loser:  lx.tokens[j].Name,
					Input:  in,
				})
			}
		}
	}
	return out
}
