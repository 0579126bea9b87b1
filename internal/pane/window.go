package pane

import "os"

// Window is an ordered, left-to-right strip of equal-width panes sharing
// a single status row.
type Window struct {
	Name string

	Panes  []*Pane
	Active int // index into Panes

	Rows, Cols int // full terminal size, including the status row
	nextID     int
}

// NewWindow creates an empty window sized to the terminal.
func NewWindow(name string, rows, cols int) *Window {
	return &Window{Name: name, Rows: rows, Cols: cols}
}

// PaneHeight is rows - 1: the last row is reserved for the status bar.
func (w *Window) PaneHeight() int {
	h := w.Rows - 1
	if h < 1 {
		h = 1
	}
	return h
}

// Layout computes (width, xoff) for n equal-width panes across cols
// columns, each separated by a single border column, per §4.4: effective
// pane width is (W - (n-1)) / n, pane i sits at xoff = i*(width+1). Any
// remainder from integer division is simply not rendered.
func Layout(n, cols int) (width int, xoffs []int) {
	if n <= 0 {
		return 0, nil
	}
	width = (cols - (n - 1)) / n
	if width < 1 {
		width = 1
	}
	xoffs = make([]int, n)
	for i := range xoffs {
		xoffs[i] = i * (width + 1)
	}
	return width, xoffs
}

// Relayout recomputes every pane's geometry for the window's current
// size and resizes each pane's grid/emulator to match.
func (w *Window) Relayout() {
	n := len(w.Panes)
	if n == 0 {
		return
	}
	width, xoffs := Layout(n, w.Cols)
	height := w.PaneHeight()
	for i, p := range w.Panes {
		p.XOff, p.YOff = xoffs[i], 0
		if p.SX != width || p.SY != height {
			p.Resize(width, height)
			p.NotifyPTYSize()
		} else {
			p.Dirty = true
		}
	}
}

// AddPane appends a new pane bound to master, re-lays-out the window,
// and makes it active.
func (w *Window) AddPane(master *os.File) *Pane {
	id := w.nextID
	w.nextID++
	p := &Pane{ID: id, Master: master}
	w.Panes = append(w.Panes, p)
	w.Relayout()
	// Relayout only resizes panes whose size already differs; a brand new
	// pane has SX==0 so it always takes the resize path above, which
	// allocates its grid and emulator.
	w.Active = len(w.Panes) - 1
	return p
}

// RemovePane drops pane index i. If it was active, the next pane in list
// order becomes active, or the previous one if i was the last pane; if
// none remain, Active is left at 0 with an empty Panes slice.
func (w *Window) RemovePane(i int) {
	if i < 0 || i >= len(w.Panes) {
		return
	}
	w.Panes[i].Close()
	wasActive := i == w.Active
	w.Panes = append(w.Panes[:i], w.Panes[i+1:]...)
	if len(w.Panes) == 0 {
		w.Active = 0
		return
	}
	switch {
	case wasActive:
		if i >= len(w.Panes) {
			w.Active = len(w.Panes) - 1
		} else {
			w.Active = i
		}
	case i < w.Active:
		w.Active--
	}
	w.Relayout()
}

// ActivePane returns the active pane, or nil if the window has none.
func (w *Window) ActivePane() *Pane {
	if w.Active < 0 || w.Active >= len(w.Panes) {
		return nil
	}
	return w.Panes[w.Active]
}

// NextPane advances Active to the next pane, wrapping around.
func (w *Window) NextPane() {
	if len(w.Panes) == 0 {
		return
	}
	w.Active = (w.Active + 1) % len(w.Panes)
}

// Resize changes the window's full terminal size and re-lays-out every
// pane.
func (w *Window) Resize(rows, cols int) {
	w.Rows, w.Cols = rows, cols
	w.Relayout()
}
