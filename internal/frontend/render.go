package frontend

import (
	"fmt"
	"io"
	"time"

	"muxkit/internal/grid"
	"muxkit/internal/pane"
	"muxkit/internal/version"
)

// Render is a stateless re-emission of ANSI sequences for the whole
// window: every pane's content, the borders between adjacent panes, the
// status bar (carrying the elapsed-since-attach indicator), and the
// final cursor position.
func Render(w io.Writer, win *pane.Window, attached time.Duration) {
	io.WriteString(w, "\x1b[?25l")
	for _, p := range win.Panes {
		renderPane(w, p)
	}
	renderBorders(w, win)
	renderStatusBar(w, win, attached)
	repositionCursor(w, win)
}

// renderPane repaints p's rows, but only if it is Dirty: the busy-pane
// throttle of SPEC_FULL §12.4, which skips the full-screen repaint of an
// idle pane on every tick or every other pane's PTY read.
func renderPane(w io.Writer, p *pane.Pane) {
	if !p.Dirty {
		return
	}
	for y := 0; y < p.SY; y++ {
		fmt.Fprintf(w, "\x1b[%d;%dH", p.YOff+y+1, p.XOff+1)
		row := p.Grid.DisplayLine(y)
		renderRow(w, row, p.SX)
	}
	p.Dirty = false
}

// renderRow emits one row's cells: resets attributes between
// attribute-differing runs, emits 256-color fg/bg only when the cell
// doesn't carry the "default" flag, emits the cell's UTF-8 bytes, and
// skips width-1 columns after a wide cell.
func renderRow(w io.Writer, row []grid.Cell, width int) {
	var lastSGR string
	col := 0
	for col < width {
		var c grid.Cell
		if row != nil && col < len(row) {
			c = row[col]
		} else {
			c = grid.Blank()
		}
		sgr := cellSGR(c)
		if sgr != lastSGR {
			io.WriteString(w, "\x1b[0m")
			io.WriteString(w, sgr)
			lastSGR = sgr
		}
		fmt.Fprint(w, string(c.Rune()))
		col++
		if c.Width == 2 {
			col++ // skip the spacer column that followed the wide cell
		}
	}
	io.WriteString(w, "\x1b[0m")
}

func cellSGR(c grid.Cell) string {
	codes := ""
	if c.HasAttr(grid.AttrBold) {
		codes += ";1"
	}
	if c.HasAttr(grid.AttrUnderline) {
		codes += ";4"
	}
	if c.HasAttr(grid.AttrItalic) {
		codes += ";3"
	}
	if c.HasAttr(grid.AttrReverse) {
		codes += ";7"
	}
	if c.Flags&grid.FlagFgDefault == 0 {
		codes += fmt.Sprintf(";38;5;%d", c.Fg)
	}
	if c.Flags&grid.FlagBgDefault == 0 {
		codes += fmt.Sprintf(";48;5;%d", c.Bg)
	}
	if codes == "" {
		return ""
	}
	return "\x1b[" + codes[1:] + "m"
}

// renderBorders draws a single blue vertical bar between adjacent panes.
func renderBorders(w io.Writer, win *pane.Window) {
	for i := 0; i < len(win.Panes)-1; i++ {
		p := win.Panes[i]
		col := p.XOff + p.SX + 1
		for y := 0; y < p.SY; y++ {
			fmt.Fprintf(w, "\x1b[%d;%dH\x1b[34m│\x1b[0m", p.YOff+y+1, col)
		}
	}
}

// renderStatusBar draws the window name padded with spaces and the
// version string right-aligned, white-on-blue, with a "[history]" marker
// when the active pane is scrolled into history and an
// elapsed-since-attach indicator that the idle ticker keeps current even
// without PTY activity.
func renderStatusBar(w io.Writer, win *pane.Window, attached time.Duration) {
	row := win.Rows
	fmt.Fprintf(w, "\x1b[%d;1H\x1b[37;44m", row)

	right := fmt.Sprintf("muxkit %s %s", version.String, formatElapsed(attached))
	active := win.ActivePane()
	historyMode := active != nil && active.Grid.ScrollOffset != 0
	if historyMode {
		right = "[history] " + right
	}

	name := win.Name
	pad := win.Cols - len(name) - len(right)
	if pad < 1 {
		pad = 1
	}
	line := name + spaces(pad) + right
	if len(line) > win.Cols {
		line = line[:win.Cols]
	}
	io.WriteString(w, line)
	io.WriteString(w, "\x1b[0m")
}

// formatElapsed renders a duration as the status bar's attach-age
// indicator, e.g. "3:07" or "1:02:30".
func formatElapsed(d time.Duration) string {
	s := int(d.Seconds())
	h, s := s/3600, s%3600
	m, s := s/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// repositionCursor moves the cursor to the active pane's
// (xoff+cx, yoff+cy) and shows it unless the pane is in history mode or
// its emulator has hidden the cursor.
func repositionCursor(w io.Writer, win *pane.Window) {
	p := win.ActivePane()
	if p == nil {
		return
	}
	historyMode := p.Grid.ScrollOffset != 0
	cx, cy := p.Cursor()
	fmt.Fprintf(w, "\x1b[%d;%dH", p.YOff+cy+1, p.XOff+cx+1)
	if !historyMode && p.Emulator.CursorVisible() {
		io.WriteString(w, "\x1b[?25h")
	}
}
