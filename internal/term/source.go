// Package term connects a terminal to a stream.Adapter: key presses in,
// action output and the pending buffer out.
package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Source delivers key presses from Screen. Printable keys are sent as the
// rune they produce, other keys by their tcell name ("Enter", "Up", ...).
// Escape and Ctrl-C are not delivered; they call OnQuit instead.
type Source struct {
	Screen tcell.Screen
	OnQuit func()
}

// Listen starts reading key events. The returned stop function blocks
// until fn has returned for the last time and the screen is no longer read.
func (s *Source) Listen(fn func(key string)) func() {
	quit := make(chan struct{})
	events := make(chan tcell.Event)
	done := make(chan struct{})
	go s.Screen.ChannelEvents(events, quit)
	go func() {
		defer close(done)
		// events is closed once quit is closed or the screen is finalized
		for ev := range events {
			select {
			case <-quit:
				continue
			default:
			}
			e, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			switch e.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				if s.OnQuit != nil {
					s.OnQuit()
				}
			default:
				fn(KeyName(e))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// KeyName renders a key event the way Source reports it.
func KeyName(e *tcell.EventKey) string {
	if e.Key() == tcell.KeyRune {
		return string(e.Rune())
	}
	if name, ok := tcell.KeyNames[e.Key()]; ok {
		return name
	}
	return e.Name()
}
