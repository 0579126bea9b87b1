package grid

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// header is the eight 32-bit words that open every snapshot, in wire
// order.
type header struct {
	PaneID       uint32
	CX, CY       uint32
	Width        uint32
	Height       uint32
	HistorySize  uint32
	HistoryCount uint32
	ScrollOffset uint32
}

const headerWords = 8

// Serialize produces, in order: pane_id, cx, cy, width, height,
// history_size, history_count, scroll_offset (each a 32-bit word), the
// live cells as a contiguous width*height*sizeof(Cell) blob, then the
// stored history rows in chronological order (oldest first).
func (g *Grid) Serialize(paneID uint32, cx, cy int) []byte {
	stored := g.stored()
	buf := new(bytes.Buffer)
	buf.Grow(headerWords*4 + len(g.Live)*Size + stored*g.Width*Size)

	h := header{
		PaneID:       paneID,
		CX:           uint32(cx),
		CY:           uint32(cy),
		Width:        uint32(g.Width),
		Height:       uint32(g.Height),
		HistorySize:  uint32(g.HistorySize),
		HistoryCount: g.HistoryCount,
		ScrollOffset: uint32(g.ScrollOffset),
	}
	binary.Write(buf, binary.LittleEndian, h)

	for _, c := range g.Live {
		writeCell(buf, c)
	}
	for k := 0; k < stored; k++ {
		row := g.historyLine(k)
		for _, c := range row {
			writeCell(buf, c)
		}
	}
	return buf.Bytes()
}

func writeCell(buf *bytes.Buffer, c Cell) {
	buf.Write(c.Grapheme[:])
	buf.WriteByte(c.Width)
	buf.WriteByte(c.Fg)
	buf.WriteByte(c.Bg)
	buf.WriteByte(byte(c.Attrs))
	buf.WriteByte(byte(c.Flags))
	buf.WriteByte(c.Line)
}

func readCell(r *bytes.Reader) (Cell, error) {
	var c Cell
	if _, err := r.Read(c.Grapheme[:]); err != nil {
		return c, err
	}
	fields := []*uint8{&c.Width, &c.Fg, &c.Bg}
	for _, f := range fields {
		b, err := r.ReadByte()
		if err != nil {
			return c, err
		}
		*f = b
	}
	attrs, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.Attrs = AttrMask(attrs)
	flags, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.Flags = ColorFlags(flags)
	line, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.Line = line
	return c, nil
}

// Deserialize is the inverse of Serialize: it returns the pane id and
// cursor, replaces the grid buffers, and resets history_count to the
// number of rows actually replayed.
func Deserialize(data []byte) (paneID uint32, cx, cy int, g *Grid, err error) {
	r := bytes.NewReader(data)
	var h header
	if err = binary.Read(r, binary.LittleEndian, &h); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("grid: read header: %w", err)
	}

	g = &Grid{
		Width:       int(h.Width),
		Height:      int(h.Height),
		HistorySize: int(h.HistorySize),
	}
	g.Live = make([]Cell, g.Width*g.Height)
	for i := range g.Live {
		c, cerr := readCell(r)
		if cerr != nil {
			return 0, 0, 0, nil, fmt.Errorf("grid: read live cell %d: %w", i, cerr)
		}
		g.Live[i] = c
	}

	g.History = make([]Cell, g.HistorySize*g.Width)
	blank := Blank()
	for i := range g.History {
		g.History[i] = blank
	}

	replayed := 0
	for replayed < g.HistorySize && r.Len() > 0 {
		row := make([]Cell, g.Width)
		ok := true
		for x := 0; x < g.Width; x++ {
			c, cerr := readCell(r)
			if cerr != nil {
				ok = false
				break
			}
			row[x] = c
		}
		if !ok {
			break
		}
		copy(g.History[replayed*g.Width:(replayed+1)*g.Width], row)
		replayed++
	}
	g.HistoryCount = uint32(replayed)
	g.ScrollOffset = int(h.ScrollOffset)
	if max := g.maxScrollOffset(); g.ScrollOffset > max {
		g.ScrollOffset = max
	}

	return h.PaneID, int(h.CX), int(h.CY), g, nil
}
