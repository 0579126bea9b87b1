package grid

// Grid is a height x width array of cells plus a fixed-capacity scrollback
// ring of historical rows. See push_line_to_history for the ring's slot
// formula.
type Grid struct {
	Width, Height int

	Live []Cell // Height*Width, row-major

	HistorySize  int
	HistoryCount uint32 // monotone non-decreasing
	History      []Cell // HistorySize*Width, row-major ring buffer
	ScrollOffset int

	CursorX, CursorY int
}

// New allocates a grid with blank live cells (see Blank) and an empty
// ring of historySize rows.
func New(width, height, historySize int) *Grid {
	g := &Grid{
		Width:       width,
		Height:      height,
		HistorySize: historySize,
	}
	g.Live = make([]Cell, width*height)
	g.History = make([]Cell, width*historySize)
	g.clearLive()
	return g
}

func (g *Grid) clearLive() {
	blank := Blank()
	for i := range g.Live {
		g.Live[i] = blank
	}
}

// stored returns the number of ring slots actually populated.
func (g *Grid) stored() int {
	if int(g.HistoryCount) < g.HistorySize {
		return int(g.HistoryCount)
	}
	return g.HistorySize
}

// At returns the live cell at (x, y), or the zero Cell if out of range.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Cell{}
	}
	return g.Live[y*g.Width+x]
}

// Set writes the live cell at (x, y).
func (g *Grid) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Live[y*g.Width+x] = c
}

// Row returns the live row y as a slice sharing the grid's backing array.
func (g *Grid) Row(y int) []Cell {
	if y < 0 || y >= g.Height {
		return nil
	}
	return g.Live[y*g.Width : (y+1)*g.Width]
}

// PushLineToHistory copies row into the ring slot history_count mod
// history_size and increments history_count. Called exclusively by the
// emulator adaptor when it observes a scroll-up.
func (g *Grid) PushLineToHistory(row []Cell) {
	if g.HistorySize == 0 {
		return
	}
	slot := int(g.HistoryCount) % g.HistorySize
	dst := g.History[slot*g.Width : (slot+1)*g.Width]
	n := copy(dst, row)
	for ; n < g.Width; n++ {
		dst[n] = Blank()
	}
	g.HistoryCount++
}

// historyLine returns logical line k (0 = oldest available) from the ring.
func (g *Grid) historyLine(k int) []Cell {
	stored := g.stored()
	if k < 0 || k >= stored {
		return nil
	}
	slot := (int(g.HistoryCount) - stored + k) % g.HistorySize
	if slot < 0 {
		slot += g.HistorySize
	}
	return g.History[slot*g.Width : (slot+1)*g.Width]
}

// maxScrollOffset returns min(history_count, history_size).
func (g *Grid) maxScrollOffset() int {
	return g.stored()
}

// ScrollUp saturates scroll_offset upward by n, bounded by available
// history.
func (g *Grid) ScrollUp(n int) {
	g.ScrollOffset += n
	if max := g.maxScrollOffset(); g.ScrollOffset > max {
		g.ScrollOffset = max
	}
}

// ScrollDown saturates scroll_offset downward by n; scrolling past zero
// is a no-op.
func (g *Grid) ScrollDown(n int) {
	g.ScrollOffset -= n
	if g.ScrollOffset < 0 {
		g.ScrollOffset = 0
	}
}

// DisplayLine returns the row to render at screen row y, or nil if y
// addresses history beyond what is available (caller draws blanks).
func (g *Grid) DisplayLine(y int) []Cell {
	if g.ScrollOffset == 0 {
		return g.Row(y)
	}
	stored := g.stored()
	// The virtual sequence: history (chronological) followed by the live
	// grid, with scroll_offset rows of live content pushed out of view.
	virtualLen := stored + g.Height
	idx := virtualLen - g.Height - g.ScrollOffset + y
	if idx < 0 {
		return nil
	}
	if idx < stored {
		return g.historyLine(idx)
	}
	return g.Row(idx - stored)
}

// Resize reallocates the live grid to the new dimensions, copying the
// top-left subrectangle that fits. Cursor is clamped into the new
// rectangle. When the width changes, the ring is rebuilt for the new
// width via Reflow.
func (g *Grid) Resize(width, height int) {
	oldWidth := g.Width
	newLive := make([]Cell, width*height)
	blank := Blank()
	for i := range newLive {
		newLive[i] = blank
	}
	copyW := width
	if oldWidth < copyW {
		copyW = oldWidth
	}
	copyH := height
	if g.Height < copyH {
		copyH = g.Height
	}
	for y := 0; y < copyH; y++ {
		srcRow := g.Live[y*oldWidth : y*oldWidth+copyW]
		dstRow := newLive[y*width : y*width+copyW]
		copy(dstRow, srcRow)
	}
	if width != oldWidth {
		g.Reflow(width)
	}
	g.Width, g.Height = width, height
	g.Live = newLive
	if g.CursorX >= width {
		g.CursorX = width - 1
	}
	if g.CursorX < 0 {
		g.CursorX = 0
	}
	if g.CursorY >= height {
		g.CursorY = height - 1
	}
	if g.CursorY < 0 {
		g.CursorY = 0
	}
}

// Reflow rebuilds the ring at a new width: it reassembles logical lines
// from the ring using per-row continuation flags, trims trailing blank
// cells, re-wraps them at the new width, and discards leading overflow
// that no longer fits in history_size rows. Best-effort: padding at the
// tail is simply dropped.
func (g *Grid) Reflow(newWidth int) {
	if newWidth == g.Width || newWidth <= 0 {
		return
	}
	stored := g.stored()
	logical := make([][]Cell, 0, stored)
	var cur []Cell
	for k := 0; k < stored; k++ {
		row := g.historyLine(k)
		cont := len(row) > 0 && row[0].IsContinuation()
		trimmed := trimTrailingBlank(row)
		if cont && len(logical) > 0 {
			logical[len(logical)-1] = append(logical[len(logical)-1], trimmed...)
		} else {
			cur = append([]Cell{}, trimmed...)
			logical = append(logical, cur)
		}
	}

	newHistory := make([]Cell, g.HistorySize*newWidth)
	blank := Blank()
	for i := range newHistory {
		newHistory[i] = blank
	}
	rows := make([][]Cell, 0, stored)
	for _, line := range logical {
		if len(line) == 0 {
			rows = append(rows, make([]Cell, newWidth))
			copy(rows[len(rows)-1], line)
			continue
		}
		for off := 0; off < len(line); off += newWidth {
			end := off + newWidth
			if end > len(line) {
				end = len(line)
			}
			r := make([]Cell, newWidth)
			for i := range r {
				r[i] = blank
			}
			copy(r, line[off:end])
			if off > 0 {
				r[0].Line |= ContinuationFlag
			}
			rows = append(rows, r)
		}
	}
	if len(rows) > g.HistorySize {
		rows = rows[len(rows)-g.HistorySize:]
	}
	for i, r := range rows {
		copy(newHistory[i*newWidth:(i+1)*newWidth], r)
	}

	g.History = newHistory
	g.HistoryCount = uint32(len(rows))
	g.Width = newWidth
}

func trimTrailingBlank(row []Cell) []Cell {
	end := len(row)
	for end > 0 && row[end-1].IsBlank() {
		end--
	}
	out := make([]Cell, end)
	copy(out, row[:end])
	return out
}
