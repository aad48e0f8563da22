package regexlib

// StepResult is the outcome of feeding one symbol to a Runner.
type StepResult int

const (
	NoTransition StepResult = iota - 1 // no edge; the cursor did not move
	Moved                              // moved to a non-accepting state
	Accepted                           // moved to an accepting state
)

func (r StepResult) String() string {
	switch r {
	case NoTransition:
		return "no transition"
	case Moved:
		return "moved"
	case Accepted:
		return "accepted"
	}
	return "unknown"
}

// Runner walks one DFA a symbol at a time. The DFA is never modified, so
// several runners may share it; a single Runner is not safe for concurrent use.
type Runner struct {
	dfa *DFA
	cur string
}

func NewRunner(d *DFA) *Runner {
	return &Runner{dfa: d, cur: d.Initial}
}

// Step advances the cursor by sym.
func (r *Runner) Step(sym rune) StepResult {
	next, ok := r.dfa.Next(r.cur, sym)
	if !ok {
		return NoTransition
	}
	r.cur = next
	if r.dfa.IsAccepting(next) {
		return Accepted
	}
	return Moved
}

// Reset puts the cursor back on the initial state.
func (r *Runner) Reset() { r.cur = r.dfa.Initial }

// ResetTo puts the cursor on state.
func (r *Runner) ResetTo(state string) { r.cur = state }

func (r *Runner) State() string     { return r.cur }
func (r *Runner) IsAccepting() bool { return r.dfa.IsAccepting(r.cur) }
func (r *Runner) DFA() *DFA         { return r.dfa }
