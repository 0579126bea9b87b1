package grid

import "testing"

func fillRune(g *Grid, y int, r rune) {
	row := g.Row(y)
	for i := range row {
		c := Blank()
		c.SetRune(r)
		row[i] = c
	}
}

func TestPushLineToHistorySlotFormula(t *testing.T) {
	g := New(4, 2, 3)
	for i := 0; i < 5; i++ {
		row := make([]Cell, 4)
		for x := range row {
			row[x] = Blank()
			row[x].SetRune(rune('a' + i))
		}
		g.PushLineToHistory(row)
	}
	if g.HistoryCount != 5 {
		t.Fatalf("history_count = %d, want 5", g.HistoryCount)
	}
	// stored = min(5,3) = 3; oldest available (k=0) is push index 2 ('c').
	line := g.historyLine(0)
	if line[0].Rune() != 'c' {
		t.Fatalf("historyLine(0) = %q, want 'c'", line[0].Rune())
	}
	line2 := g.historyLine(2)
	if line2[0].Rune() != 'e' {
		t.Fatalf("historyLine(2) = %q, want 'e'", line2[0].Rune())
	}
}

func TestScrollBoundaries(t *testing.T) {
	g := New(4, 2, 10)
	for i := 0; i < 6; i++ {
		row := make([]Cell, 4)
		for x := range row {
			row[x] = Blank()
		}
		g.PushLineToHistory(row)
	}
	g.ScrollUp(1000)
	if g.ScrollOffset != g.maxScrollOffset() {
		t.Fatalf("scroll_offset = %d, want saturate at %d", g.ScrollOffset, g.maxScrollOffset())
	}
	g.ScrollDown(1000)
	if g.ScrollOffset != 0 {
		t.Fatalf("scroll_offset = %d, want 0", g.ScrollOffset)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	g := New(5, 3, 4)
	fillRune(g, 0, 'x')
	fillRune(g, 1, 'y')
	fillRune(g, 2, 'z')
	for i := 0; i < 6; i++ {
		row := make([]Cell, 5)
		for x := range row {
			row[x] = Blank()
			row[x].SetRune(rune('0' + i))
		}
		g.PushLineToHistory(row)
	}
	g.ScrollOffset = 0

	data := g.Serialize(42, 2, 1)
	id, cx, cy, g2, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if id != 42 || cx != 2 || cy != 1 {
		t.Fatalf("got id=%d cx=%d cy=%d, want 42,2,1", id, cx, cy)
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(x, y).Rune() != g2.At(x, y).Rune() {
				t.Fatalf("live cell (%d,%d) mismatch: %q vs %q", x, y, g.At(x, y).Rune(), g2.At(x, y).Rune())
			}
		}
	}
	wantStored := g.stored()
	if int(g2.HistoryCount) != wantStored {
		t.Fatalf("history_count after deserialize = %d, want %d", g2.HistoryCount, wantStored)
	}
	for k := 0; k < wantStored; k++ {
		a := g.historyLine(k)
		b := g2.historyLine(k)
		for x := range a {
			if a[x].Rune() != b[x].Rune() {
				t.Fatalf("history line %d cell %d mismatch: %q vs %q", k, x, a[x].Rune(), b[x].Rune())
			}
		}
	}
}

func TestResizePreservesTopLeft(t *testing.T) {
	g := New(4, 3, 5)
	fillRune(g, 0, 'a')
	fillRune(g, 1, 'b')
	g.Resize(2, 2)
	if g.Width != 2 || g.Height != 2 {
		t.Fatalf("size after resize = %dx%d, want 2x2", g.Width, g.Height)
	}
	if g.At(0, 0).Rune() != 'a' || g.At(1, 0).Rune() != 'a' {
		t.Fatalf("top-left row not preserved")
	}
}

func TestCursorClampedAfterResize(t *testing.T) {
	g := New(10, 10, 5)
	g.CursorX, g.CursorY = 9, 9
	g.Resize(3, 3)
	if g.CursorX >= g.Width || g.CursorY >= g.Height {
		t.Fatalf("cursor (%d,%d) not clamped into %dx%d", g.CursorX, g.CursorY, g.Width, g.Height)
	}
}
