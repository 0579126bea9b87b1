package emulator

import (
	"testing"

	"muxkit/internal/grid"
)

func TestAttrsOfBasicSGR(t *testing.T) {
	fg, bg, attrs, flags := attrsOf("\x1b[1;4;31;42m")
	if fg != 1 {
		t.Fatalf("fg = %d, want 1", fg)
	}
	if bg != 2 {
		t.Fatalf("bg = %d, want 2", bg)
	}
	if !attrs.HasBold() || !attrs.HasUnderline() {
		t.Fatalf("attrs = %v, want bold+underline", attrs)
	}
	if flags&grid.FlagFgDefault != 0 || flags&grid.FlagBgDefault != 0 {
		t.Fatalf("flags = %v, want no default bits set", flags)
	}
}

func TestAttrsOfDefaultReset(t *testing.T) {
	_, _, attrs, flags := attrsOf("\x1b[0m")
	if attrs != 0 {
		t.Fatalf("attrs = %v, want 0", attrs)
	}
	if flags&grid.FlagFgDefault == 0 || flags&grid.FlagBgDefault == 0 {
		t.Fatalf("flags = %v, want both default bits set", flags)
	}
}

func TestAttrsOfTruecolorProjectsToCube(t *testing.T) {
	fg, _, _, flags := attrsOf("\x1b[38;2;255;0;0m")
	want := cube216(255, 0, 0)
	if fg != want {
		t.Fatalf("fg = %d, want %d", fg, want)
	}
	if flags&grid.FlagFgDefault != 0 {
		t.Fatalf("fg should not carry the default flag")
	}
}

func TestRenderSGRRoundTripsAttrs(t *testing.T) {
	c := grid.Blank()
	c.Attrs = grid.AttrBold | grid.AttrReverse
	c.Flags = 0
	c.Fg = 5
	c.Bg = 9
	seq := renderSGR(c)
	fg, bg, attrs, flags := attrsOf(seq)
	if fg != 5 || bg != 9 {
		t.Fatalf("fg,bg = %d,%d want 5,9", fg, bg)
	}
	if !attrs.HasBold() || !attrs.HasReverse() {
		t.Fatalf("attrs = %v, want bold+reverse", attrs)
	}
	if flags != 0 {
		t.Fatalf("flags = %v, want 0 (explicit colors)", flags)
	}
}
