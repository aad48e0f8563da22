package regexlib

// insertConcat makes concatenation explicit: a tConcat goes between every
// token that can end an operand and a following token that can start one.
func insertConcat(toks []token) []token {
	out := make([]token, 0, 2*len(toks))
	for i, tok := range toks {
		out = append(out, tok)
		if i == len(toks)-1 {
			continue
		}
		if next := toks[i+1]; tok.endsAtom() && next.startsAtom() {
			out = append(out, token{typ: tConcat, pos: next.pos})
		}
	}
	return out
}

// precedence of the binary operators; both are left-associative.
func precedence(t tokenType) int {
	switch t {
	case tUnion:
		return 1
	case tConcat:
		return 2
	default:
		return 0
	}
}

// toPostfix runs the shunting-yard algorithm over an explicit-concatenation
// token stream and validates operator placement on the way.
func toPostfix(pattern string, toks []token) ([]token, error) {
	out := make([]token, 0, len(toks))
	var ops []token

	for i, tok := range toks {
		switch tok.typ {
		case tLiteral:
			out = append(out, tok)

		case tStar, tQMark:
			if i == 0 || !toks[i-1].endsAtom() {
				return nil, compileErr(pattern, tok.pos, ErrInvalidPostfixOperator)
			}
			out = append(out, tok)

		case tLParen:
			ops = append(ops, tok)

		case tRParen:
			matched := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.typ == tLParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, compileErr(pattern, tok.pos, ErrUnmatchedParen)
			}

		case tUnion, tConcat:
			if i == 0 || i == len(toks)-1 {
				return nil, compileErr(pattern, tok.pos, ErrInvalidInfixOperator)
			}
			if !toks[i-1].endsAtom() || !toks[i+1].startsAtom() {
				return nil, compileErr(pattern, tok.pos, ErrInvalidInfixOperator)
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.typ != tUnion && top.typ != tConcat {
					break
				}
				if precedence(top.typ) < precedence(tok.typ) {
					break
				}
				out = append(out, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.typ == tLParen || top.typ == tRParen {
			return nil, compileErr(pattern, top.pos, ErrUnmatchedParen)
		}
		out = append(out, top)
	}
	return out, nil
}

// postfix runs the front end: tokenize, insert concatenation, reorder.
func postfix(pattern string) ([]token, error) {
	toks, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}
	return toPostfix(pattern, insertConcat(toks))
}
