// Package action turns token names and Lua snippets into stream actions.
//
// A snippet sees two globals, token and buffer, and can call emit(s) to
// produce output:
//
//	emit("king to " .. buffer)
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"keylex/internal/logutil"
	"keylex/stream"
)

const DefaultTimeout = time.Second

var ErrClosed = errors.New("action: lua state closed")

type Option func(*Lua)

// WithTimeout bounds the run time of a single snippet.
func WithTimeout(d time.Duration) Option {
	return func(l *Lua) { l.timeout = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Lua) { l.log = log }
}

// Lua runs snippets on one shared interpreter. Actions built from the same
// Lua serialize on it.
type Lua struct {
	mu      sync.Mutex
	L       *lua.LState
	out     func(string)
	timeout time.Duration
	closed  bool
	log     *slog.Logger
}

func NewLua(out func(string), opts ...Option) *Lua {
	l := &Lua{
		L:       lua.NewState(lua.Options{SkipOpenLibs: true}),
		out:     out,
		timeout: DefaultTimeout,
		log:     logutil.Discard(),
	}
	for _, o := range opts {
		o(l)
	}
	openSafeLibraries(l.L)
	l.L.SetGlobal("emit", l.L.NewFunction(l.emit))
	return l
}

func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			panic(err)
		}
	}
	// no file access from snippets
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (l *Lua) emit(L *lua.LState) int {
	var s string
	for i := 1; i <= L.GetTop(); i++ {
		s += L.ToStringMeta(L.Get(i)).String()
	}
	l.out(s)
	return 0
}

// Compile checks script and returns an action running it for token name.
// Runtime errors are logged, never returned to the adapter.
func (l *Lua) Compile(name, script string) (stream.Action, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	fn, err := l.L.LoadString(script)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", name, err)
	}
	return func(buffer string) {
		if err := l.run(fn, name, buffer); err != nil {
			l.log.Warn("action failed", "token", name, "buffer", buffer, "error", err)
		}
	}, nil
}

func (l *Lua) run(fn *lua.LFunction, name, buffer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	l.L.SetContext(ctx)
	defer l.L.RemoveContext()

	l.L.SetGlobal("token", lua.LString(name))
	l.L.SetGlobal("buffer", lua.LString(buffer))
	return l.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
}

// For returns the scripted action for name when scripts has one, and
// Print otherwise.
func (l *Lua) For(name string, scripts map[string]string) (stream.Action, error) {
	if script, ok := scripts[name]; ok {
		return l.Compile(name, script)
	}
	return Print(name, l.out), nil
}

func (l *Lua) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.L.Close()
}

// Print returns an action that writes "<name>: <buffer>" to out.
func Print(name string, out func(string)) stream.Action {
	return func(buffer string) {
		out(name + ": " + buffer)
	}
}
