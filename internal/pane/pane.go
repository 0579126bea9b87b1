// Package pane implements the pane/window model: geometry, cursor,
// emulator and grid lifecycle, and the resize transaction that keeps all
// three in lockstep.
package pane

import (
	"os"

	"github.com/creack/pty"

	"muxkit/internal/emulator"
	"muxkit/internal/grid"
)

// HistorySize is the fixed scrollback capacity allocated for every pane's
// grid.
const HistorySize = 1000

// Pane is one terminal: a PTY, an emulator, and a grid, occupying a
// rectangular area of its window.
type Pane struct {
	ID int

	// Geometry, in columns/rows and offsets within the window.
	SX, SY, XOff, YOff int

	Grid     *grid.Grid
	Emulator *emulator.Adaptor
	Master   *os.File

	// Dirty marks that this pane's grid changed (or it was resized) since
	// its last render, so the front-end can skip repainting idle panes.
	Dirty bool
}

// New allocates a pane's grid and emulator at the given size. The
// emulator's response writer is the PTY master, so DSR replies and mouse
// reports loop back to the child.
func New(id, sx, sy, xoff, yoff int, master *os.File) *Pane {
	g := grid.New(sx, sy, HistorySize)
	p := &Pane{
		ID: id, SX: sx, SY: sy, XOff: xoff, YOff: yoff,
		Grid: g, Master: master, Dirty: true,
	}
	p.Emulator = emulator.New(sy, sx, g, master)
	return p
}

// Feed pushes PTY output through the emulator into the grid and marks the
// pane dirty.
func (p *Pane) Feed(data []byte) error {
	if err := p.Emulator.PaneInput(data); err != nil {
		return err
	}
	p.Dirty = true
	return nil
}

// Cursor returns the pane-relative cursor, clamped into (SX, SY).
func (p *Pane) Cursor() (cx, cy int) {
	cx, cy = p.Grid.CursorX, p.Grid.CursorY
	if cx >= p.SX {
		cx = p.SX - 1
	}
	if cx < 0 {
		cx = 0
	}
	if cy >= p.SY {
		cy = p.SY - 1
	}
	if cy < 0 {
		cy = 0
	}
	return cx, cy
}

// Init allocates a fresh grid and emulator for a pane created without one
// (e.g. a new split awaiting its first layout pass).
func (p *Pane) Init(sx, sy int) {
	p.SX, p.SY = sx, sy
	p.Grid = grid.New(sx, sy, HistorySize)
	p.Emulator = emulator.New(sy, sx, p.Grid, p.Master)
	p.Dirty = true
}

// Resize reallocates the pane's grid and emulator to (sx, sy), clamps the
// cursor, and marks the pane dirty so the next render repaints it.
func (p *Pane) Resize(sx, sy int) {
	if p.Grid == nil {
		p.Init(sx, sy)
		return
	}
	p.SX, p.SY = sx, sy
	p.Grid.Resize(sx, sy)
	p.Emulator.Resize(sy, sx)
	p.Dirty = true
}

// NotifyPTYSize tells the pane's own PTY master copy about its current
// (SX, SY), matching §4.4/§4.6's "notify each PTY master of the new
// per-pane window size" step. The front-end holds an independent copy of
// the master after FD passing, so it must set this itself rather than
// rely on the server's copy.
func (p *Pane) NotifyPTYSize() error {
	if p.Master == nil {
		return nil
	}
	return pty.Setsize(p.Master, &pty.Winsize{Rows: uint16(p.SY), Cols: uint16(p.SX)})
}

// Close releases the pane's PTY master. The shell child itself is reaped
// independently by the server's SIGCHLD handling.
func (p *Pane) Close() error {
	if p.Master == nil {
		return nil
	}
	return p.Master.Close()
}

// Snapshot serializes the pane's grid for a detach.
func (p *Pane) Snapshot() []byte {
	cx, cy := p.Cursor()
	return p.Grid.Serialize(uint32(p.ID), cx, cy)
}

// Restore replaces the pane's grid from a detach snapshot and replays it
// into a fresh emulator (§4.3 sync_vterm_from_grid).
func (p *Pane) Restore(data []byte) error {
	id, cx, cy, g, err := grid.Deserialize(data)
	_ = id
	if err != nil {
		return err
	}
	p.Grid = g
	p.SX, p.SY = g.Width, g.Height
	g.CursorX, g.CursorY = cx, cy
	p.Emulator = emulator.New(g.Height, g.Width, g, p.Master)
	emulator.SyncVtermFromGrid(p.Emulator, g)
	p.Dirty = true
	return nil
}
