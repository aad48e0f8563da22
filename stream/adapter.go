// Package stream feeds live key events into a lexer, buffering them until
// a token accepts, the input goes dead, or the user pauses too long.
package stream

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"

	"keylex/internal/logutil"
	"keylex/lexer"
)

const DefaultTimeout = 500 * time.Millisecond

// DefaultIgnoredKeys restart the timer but are never buffered.
var DefaultIgnoredKeys = []string{" ", "Shift", "Control", "Alt", "Meta"}

var ErrAlreadyBound = errors.New("stream: adapter already bound")

// Action receives the whole buffer that made its token accept.
type Action func(buffer string)

// Source produces key events. Listen starts delivering keys to fn and
// returns a function that stops delivery. Keys delivered after stop are
// dropped by the adapter.
type Source interface {
	Listen(fn func(key string)) (stop func())
}

type SourceFunc func(fn func(key string)) (stop func())

func (f SourceFunc) Listen(fn func(key string)) func() { return f(fn) }

type Option func(*Adapter)

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

func WithClock(c clock.Clock) Option {
	return func(a *Adapter) { a.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithIgnoredKeys replaces DefaultIgnoredKeys.
func WithIgnoredKeys(keys ...string) Option {
	return func(a *Adapter) {
		a.ignored = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			a.ignored[k] = struct{}{}
		}
	}
}

// Adapter is safe for concurrent use. Actions run without the adapter's
// lock held, so they may call back into it, except that an action started
// by a bound source must not call Unbind.
type Adapter struct {
	mu       sync.Mutex
	dispatch sync.Mutex // held while a bound source's action runs

	lx      *lexer.Lexer
	actions map[string]Action
	buf     strings.Builder

	timeout time.Duration
	clock   clock.Clock
	timer   *clock.Timer
	gen     uint64 // names the pending timer

	ignored map[string]struct{}
	session uint64 // names the current binding, 0 when unbound
	nextID  uint64
	stop    func()

	log *slog.Logger
}

func New(opts ...Option) *Adapter {
	a := &Adapter{
		actions: make(map[string]Action),
		timeout: DefaultTimeout,
		clock:   clock.New(),
		log:     logutil.Discard(),
	}
	WithIgnoredKeys(DefaultIgnoredKeys...)(a)
	for _, o := range opts {
		o(a)
	}
	a.lx = lexer.New(lexer.WithLogger(a.log))
	return a
}

// Register adds a pattern and the action to run when it accepts.
func (a *Adapter) Register(name, pattern string, action Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.lx.Register(name, pattern); err != nil {
		return err
	}
	a.actions[name] = action
	return nil
}

func (a *Adapter) Compile() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lx.Compile()
}

// Tokens lists the registered patterns in registration order.
func (a *Adapter) Tokens() []lexer.Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lx.Tokens()
}

// Bind compiles the lexer if needed, clears any partial input and starts
// consuming keys from src.
func (a *Adapter) Bind(src Source) error {
	a.mu.Lock()
	if a.session != 0 {
		a.mu.Unlock()
		return ErrAlreadyBound
	}
	a.lx.Compile()
	a.resetLocked()
	a.nextID++
	session := a.nextID
	a.session = session
	tokens := len(a.lx.Tokens())
	a.mu.Unlock()

	stop := src.Listen(func(key string) { a.feed(key, session) })

	a.mu.Lock()
	if a.session != session {
		// unbound while Listen was running
		a.mu.Unlock()
		stop()
		return nil
	}
	a.stop = stop
	a.mu.Unlock()
	a.log.Debug("adapter bound", "tokens", tokens)
	return nil
}

// Unbind detaches from the source and cancels the pending timer. Keys still
// in flight from the old source are dropped. When Unbind returns, no action
// of the old source is running and none will start.
func (a *Adapter) Unbind() {
	a.mu.Lock()
	stop := a.stop
	a.stop = nil
	a.session = 0
	a.resetLocked()
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
	// wait out an action that passed its session check before we cleared it
	a.dispatch.Lock()
	a.dispatch.Unlock()
}

// Feed processes one key event as if it came from a bound source.
func (a *Adapter) Feed(key string) { a.feed(key, 0) }

func (a *Adapter) feed(key string, session uint64) {
	a.mu.Lock()
	if session != 0 && session != a.session {
		a.mu.Unlock()
		return
	}
	a.lx.Compile()

	if _, ok := a.ignored[key]; ok {
		a.restartTimerLocked()
		a.mu.Unlock()
		return
	}

	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || (r == utf8.RuneError && size == 1) {
		a.log.Debug("dead input", "buffer", a.buf.String(), "key", key)
		a.resetLocked()
		a.mu.Unlock()
		return
	}

	a.restartTimerLocked()
	a.buf.WriteString(key)
	res := a.lx.Step(r)
	switch res.Status {
	case lexer.Accept:
		buffer := a.buf.String()
		action := a.actions[res.Token]
		a.resetLocked()
		a.mu.Unlock()
		a.log.Debug("accepted", "token", res.Token, "buffer", buffer)
		a.run(action, buffer, session)
		return
	case lexer.Dead:
		a.log.Debug("dead input", "buffer", a.buf.String())
		a.resetLocked()
	default:
		logutil.Trace(a.log, "incomplete", "buffer", a.buf.String())
	}
	a.mu.Unlock()
}

// run calls action unless it came from a source that has since been
// unbound.
func (a *Adapter) run(action Action, buffer string, session uint64) {
	if action == nil {
		return
	}
	if session == 0 {
		action(buffer)
		return
	}
	a.dispatch.Lock()
	defer a.dispatch.Unlock()
	a.mu.Lock()
	current := a.session
	a.mu.Unlock()
	if current != session {
		a.log.Debug("action dropped after unbind", "buffer", buffer)
		return
	}
	action(buffer)
}

// expire is the timeout event. It only acts if gen still names the pending
// timer; a timer that was stopped or replaced is ignored.
func (a *Adapter) expire(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || a.timer == nil {
		return
	}
	a.timer = nil
	if a.buf.Len() > 0 {
		a.log.Debug("input timed out", "buffer", a.buf.String())
	}
	a.buf.Reset()
	a.lx.Reset()
}

func (a *Adapter) restartTimerLocked() {
	a.stopTimerLocked()
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.timeout, func() { a.expire(gen) })
}

func (a *Adapter) stopTimerLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Adapter) resetLocked() {
	a.buf.Reset()
	a.lx.Reset()
	a.stopTimerLocked()
}

// Test runs s through a fresh copy of the lexer and reports Accept with the
// token at the first accept, or Dead. The live buffer is not touched.
func (a *Adapter) Test(s string) lexer.Result {
	a.mu.Lock()
	lx := a.lx.Fork()
	a.mu.Unlock()
	return lx.Run(s)
}

// Buffer returns the keys collected since the last reset.
func (a *Adapter) Buffer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}
