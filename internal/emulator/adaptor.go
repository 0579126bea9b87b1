// Package emulator bridges the opaque VT emulator (vito/midterm) to a
// pane's cell grid: copying cells out on ingress, forwarding the
// emulator's own output bytes back to the PTY, and replaying a grid into
// a fresh emulator on attach.
package emulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vito/midterm"

	"muxkit/internal/grid"
)

// Adaptor owns one midterm.Terminal and the grid it feeds.
type Adaptor struct {
	term *midterm.Terminal
	grid *grid.Grid

	// responsesTo receives bytes the emulator wants written back to the
	// PTY master (DSR replies, mouse reports, and similar).
	responsesTo io.Writer
}

// New constructs an emulator of the requested size, wired to g. It does
// not enable or switch to an alternate screen on the emulator.
func New(rows, cols int, g *grid.Grid, responsesTo io.Writer) *Adaptor {
	term := midterm.NewTerminal(rows, cols)
	term.ForwardResponses = responsesTo

	a := &Adaptor{term: term, grid: g, responsesTo: responsesTo}
	term.OnScrollback(func(line midterm.Line) {
		a.captureScrollback(line)
	})
	return a
}

// PaneInput feeds PTY output bytes into the emulator, then syncs every
// live cell and the cursor into the grid. It does not set the per-row
// continuation flag (Cell.Line) on any cell.
func (a *Adaptor) PaneInput(p []byte) error {
	if _, err := a.term.Write(p); err != nil {
		return fmt.Errorf("emulator: write: %w", err)
	}
	a.sync()
	return nil
}

// sync copies every live cell from the emulator into the grid, mapping
// colors and attributes from each row's format regions.
func (a *Adaptor) sync() {
	rows := a.term.Height
	if rows > a.grid.Height {
		rows = a.grid.Height
	}
	for y := 0; y < rows; y++ {
		a.syncRow(y)
	}
	a.grid.CursorX = a.term.Cursor.X
	a.grid.CursorY = a.term.Cursor.Y
}

func (a *Adaptor) syncRow(y int) {
	if y >= len(a.term.Content) {
		return
	}
	content := a.term.Content[y]
	col := 0
	bytePos := 0
	var lastFormat midterm.Format
	var codeCache string
	for region := range a.term.Format.Regions(y) {
		f := region.F
		if f != lastFormat {
			codeCache = f.Render()
			lastFormat = f
		}
		fg, bg, attrs, flags := attrsOf(codeCache)
		end := bytePos + region.Size
		if end > len(content) {
			end = len(content)
		}
		if bytePos < len(content) {
			for _, r := range content[bytePos:end] {
				if col >= a.grid.Width {
					break
				}
				w := runewidth.RuneWidth(r)
				if w < 1 {
					w = 1
				}
				c := grid.Blank()
				c.SetRune(r)
				c.Width = uint8(w)
				c.Fg, c.Bg, c.Attrs, c.Flags = fg, bg, attrs, flags
				a.grid.Set(col, y, c)
				col++
				if w == 2 && col < a.grid.Width {
					spacer := grid.Blank()
					spacer.Width = 0
					a.grid.Set(col, y, spacer)
					col++
				}
			}
		}
		bytePos = end
	}
}

// captureScrollback converts a scrolled-off midterm.Line into a grid row
// and pushes it into the history ring. It walks the line's own
// content/format-region data exactly the way syncRow walks a live row,
// rather than going through Line.Display(): Display() renders the row as
// an ANSI-formatted string (escape sequences included) for terminal
// output, and decoding that character-by-character would feed ESC/CSI
// bytes into the grid as if they were glyphs.
func (a *Adaptor) captureScrollback(line midterm.Line) {
	row := make([]grid.Cell, a.grid.Width)
	for i := range row {
		row[i] = grid.Blank()
	}

	col := 0
	bytePos := 0
	var lastFormat midterm.Format
	var codeCache string
	for region := range line.Format.Regions() {
		f := region.F
		if f != lastFormat {
			codeCache = f.Render()
			lastFormat = f
		}
		fg, bg, attrs, flags := attrsOf(codeCache)
		end := bytePos + region.Size
		if end > len(line.Content) {
			end = len(line.Content)
		}
		if bytePos < len(line.Content) {
			for _, r := range line.Content[bytePos:end] {
				if col >= a.grid.Width {
					break
				}
				w := runewidth.RuneWidth(r)
				if w < 1 {
					w = 1
				}
				c := grid.Blank()
				c.SetRune(r)
				c.Width = uint8(w)
				c.Fg, c.Bg, c.Attrs, c.Flags = fg, bg, attrs, flags
				row[col] = c
				col++
				if w == 2 && col < a.grid.Width {
					spacer := grid.Blank()
					spacer.Width = 0
					row[col] = spacer
					col++
				}
			}
		}
		bytePos = end
	}
	a.grid.PushLineToHistory(row)
}

// Resize resizes the emulator to match a grid reshape.
func (a *Adaptor) Resize(rows, cols int) {
	a.term.Resize(rows, cols)
}

// SyncVtermFromGrid is the inverse of PaneInput, used on attach: it
// writes an ANSI program into a fresh emulator that repaints every live
// cell with the correct attributes and positions the cursor. It does not
// replay scrollback; the grid holds that directly.
func SyncVtermFromGrid(a *Adaptor, g *grid.Grid) {
	var b strings.Builder
	b.WriteString("\x1b[H")
	for y := 0; y < g.Height; y++ {
		if y > 0 {
			b.WriteString("\r\n")
		}
		var lastSGR string
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if c.Width == 0 {
				continue // wide-char spacer, already emitted by its leader
			}
			sgr := renderSGR(c)
			if sgr != lastSGR {
				b.WriteString(sgr)
				lastSGR = sgr
			}
			b.WriteRune(c.Rune())
		}
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", g.CursorY+1, g.CursorX+1)
	a.term.Write([]byte(b.String()))
}

// CursorVisible reports whether the emulator wants its cursor shown.
func (a *Adaptor) CursorVisible() bool { return a.term.CursorVisible }

// SetAppendOnly configures append-only scrollback growth semantics on the
// underlying emulator, matching the teacher's scrollback-capture wiring.
func (a *Adaptor) SetAppendOnly(v bool) { a.term.AppendOnly = v }
