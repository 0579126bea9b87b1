package emulator

import (
	"io"
	"testing"

	"muxkit/internal/grid"
)

// historyRow reads logical scrollback line k (0 = oldest) straight out of
// Grid's exported ring fields, mirroring the slot formula grid.historyLine
// uses internally (unexported, so out of reach from this package).
func historyRow(g *grid.Grid, k int) []grid.Cell {
	stored := int(g.HistoryCount)
	if stored > g.HistorySize {
		stored = g.HistorySize
	}
	slot := (int(g.HistoryCount) - stored + k) % g.HistorySize
	if slot < 0 {
		slot += g.HistorySize
	}
	return g.History[slot*g.Width : (slot+1)*g.Width]
}

func TestCaptureScrollbackStripsEscapesAndKeepsAttrs(t *testing.T) {
	g := grid.New(10, 2, 5)
	a := New(2, 10, g, io.Discard)

	if err := a.PaneInput([]byte("\x1b[31mred line\x1b[0m\r\nrow2\r\nrow3\r\nrow4\r\n")); err != nil {
		t.Fatalf("PaneInput: %v", err)
	}

	if g.HistoryCount == 0 {
		t.Fatalf("expected at least one row pushed to scrollback, got history_count=0")
	}

	for k := 0; k < int(g.HistoryCount) && k < g.HistorySize; k++ {
		for _, c := range historyRow(g, k) {
			if c.Rune() == 0x1b {
				t.Fatalf("history line %d contains a raw escape byte, want display characters only", k)
			}
		}
	}

	first := historyRow(g, 0)
	got := ""
	for _, c := range first {
		got += string(c.Rune())
	}
	if len(got) < 8 || got[:8] != "red line" {
		t.Fatalf("history line 0 = %q, want to start with %q", got, "red line")
	}

	if first[0].Flags&grid.FlagFgDefault != 0 {
		t.Fatalf("history line 0 cell 0 still carries the default-fg flag, want the SGR red to survive capture")
	}
	if first[0].Fg != 1 {
		t.Fatalf("history line 0 cell 0 fg = %d, want 1 (red)", first[0].Fg)
	}
}
