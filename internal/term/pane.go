package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Pane shows the most recent output lines with a status line underneath.
type Pane struct {
	mu     sync.Mutex
	screen tcell.Screen
	lines  []string
	status string
	keep   int
}

func NewPane(screen tcell.Screen) *Pane {
	return &Pane{screen: screen, keep: 500}
}

// Println appends line and redraws.
func (p *Pane) Println(line string) {
	p.mu.Lock()
	p.lines = append(p.lines, line)
	if len(p.lines) > p.keep {
		p.lines = p.lines[len(p.lines)-p.keep:]
	}
	p.mu.Unlock()
	p.Draw()
}

func (p *Pane) SetStatus(status string) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	p.Draw()
}

func (p *Pane) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

func (p *Pane) Draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.screen.Clear()
	w, h := p.screen.Size()
	if h == 0 {
		return
	}
	rows := h - 1
	first := max(0, len(p.lines)-rows)
	for y, line := range p.lines[first:] {
		drawText(p.screen, 0, y, w, line, tcell.StyleDefault)
	}
	drawText(p.screen, 0, h-1, w, p.status, tcell.StyleDefault.Reverse(true))
	p.screen.Show()
}

func drawText(s tcell.Screen, x, y, w int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
