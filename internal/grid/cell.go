// Package grid implements the pane's canonical screen model: a live cell
// array plus a scrollback ring, matching the byte-exact layout the wire
// protocol uses for detach/attach snapshots.
package grid

import "unicode/utf8"

// AttrMask is a bitmask of display attributes on a Cell.
type AttrMask uint8

const (
	AttrBold AttrMask = 1 << iota
	AttrUnderline
	AttrItalic
	AttrReverse
)

// ColorFlags marks a Cell's foreground/background as "terminal default"
// rather than an explicit palette index.
type ColorFlags uint8

const (
	FlagFgDefault ColorFlags = 1 << iota
	FlagBgDefault
)

// ContinuationFlag, stored in Cell.Line, marks a history row as the
// continuation of the logical line above it (used by reflow).
const ContinuationFlag uint8 = 0x01

// Cell is the unit of the screen: plain old data, copyable by raw memory
// move. Grapheme is at most 4 UTF-8 bytes plus a NUL terminator, matching
// the serialized layout byte-for-byte.
type Cell struct {
	Grapheme [5]byte
	Width    uint8
	Fg       uint8
	Bg       uint8
	Attrs    AttrMask
	Flags    ColorFlags
	Line     uint8 // bit 0: ContinuationFlag
}

// Size is the on-wire byte size of a Cell.
const Size = 5 + 1 + 1 + 1 + 1 + 1 + 1

// Blank returns a cleared cell: a single space, default colors, no
// attributes.
func Blank() Cell {
	var c Cell
	c.SetRune(' ')
	c.Width = 1
	c.Flags = FlagFgDefault | FlagBgDefault
	return c
}

// SetRune encodes r as the cell's grapheme, truncating to the 4-byte
// capacity (wide/astral graphemes beyond that are not representable and
// are replaced with U+FFFD).
func (c *Cell) SetRune(r rune) {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	if n > 4 {
		n = utf8.EncodeRune(buf[:], utf8.RuneError)
	}
	c.Grapheme = [5]byte{}
	copy(c.Grapheme[:], buf[:n])
}

// Rune decodes the cell's grapheme back into a rune.
func (c Cell) Rune() rune {
	n := 0
	for n < 4 && c.Grapheme[n] != 0 {
		n++
	}
	r, _ := utf8.DecodeRune(c.Grapheme[:n])
	return r
}

// IsContinuation reports whether this history row continues the logical
// line above it.
func (c Cell) IsContinuation() bool {
	return c.Line&ContinuationFlag != 0
}

// IsBlank reports whether the cell is a default-attribute space, used by
// reflow to trim trailing padding.
func (c Cell) IsBlank() bool {
	return c.Rune() == ' ' && c.Attrs == 0 && c.Flags == FlagFgDefault|FlagBgDefault
}

// HasAttr reports whether a is set on the cell.
func (c Cell) HasAttr(a AttrMask) bool { return c.Attrs&a != 0 }

func (a AttrMask) HasBold() bool       { return a&AttrBold != 0 }
func (a AttrMask) HasUnderline() bool  { return a&AttrUnderline != 0 }
func (a AttrMask) HasItalic() bool     { return a&AttrItalic != 0 }
func (a AttrMask) HasReverse() bool    { return a&AttrReverse != 0 }
