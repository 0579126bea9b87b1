package pane

import "testing"

func TestLayoutSplitsEightyColumnsIntoTwo(t *testing.T) {
	// (80-1)/2 = 39; the second pane starts after the one-column border.
	width, xoffs := Layout(2, 80)
	if width != 39 {
		t.Fatalf("width = %d, want 39", width)
	}
	if len(xoffs) != 2 || xoffs[0] != 0 || xoffs[1] != 40 {
		t.Fatalf("xoffs = %v, want [0 40]", xoffs)
	}
}

func TestLayoutDropsRemainder(t *testing.T) {
	// 82 columns, 2 panes: (82-1)/2 = 40, remainder 1 is dropped.
	width, _ := Layout(2, 82)
	if width != 40 {
		t.Fatalf("width = %d, want 40", width)
	}
}

func TestWindowAddPaneBecomesActive(t *testing.T) {
	w := NewWindow("main", 24, 80)
	w.AddPane(nil)
	w.AddPane(nil)
	if w.Active != 1 {
		t.Fatalf("active = %d, want 1", w.Active)
	}
	if len(w.Panes) != 2 {
		t.Fatalf("len(panes) = %d, want 2", len(w.Panes))
	}
	if w.Panes[0].SX != w.Panes[1].SX {
		t.Fatalf("panes not equal width: %d vs %d", w.Panes[0].SX, w.Panes[1].SX)
	}
}

func TestWindowRemoveActiveFallsBackToNext(t *testing.T) {
	w := NewWindow("main", 24, 80)
	w.AddPane(nil)
	w.AddPane(nil)
	w.AddPane(nil)
	w.Active = 1
	w.RemovePane(1)
	if len(w.Panes) != 2 {
		t.Fatalf("len(panes) = %d, want 2", len(w.Panes))
	}
	if w.Active != 1 {
		t.Fatalf("active = %d, want 1 (next pane took its place)", w.Active)
	}
}

func TestWindowRemoveLastPaneWrapsToPrevious(t *testing.T) {
	w := NewWindow("main", 24, 80)
	w.AddPane(nil)
	w.AddPane(nil)
	w.Active = 1
	w.RemovePane(1)
	if w.Active != 0 {
		t.Fatalf("active = %d, want 0", w.Active)
	}
}

func TestWindowRemoveAllPanesLeavesEmptyWindow(t *testing.T) {
	w := NewWindow("main", 24, 80)
	w.AddPane(nil)
	w.RemovePane(0)
	if len(w.Panes) != 0 {
		t.Fatalf("len(panes) = %d, want 0", len(w.Panes))
	}
	if w.ActivePane() != nil {
		t.Fatalf("ActivePane() = %v, want nil", w.ActivePane())
	}
}

func TestPaneHeightReservesStatusRow(t *testing.T) {
	w := NewWindow("main", 24, 80)
	if w.PaneHeight() != 23 {
		t.Fatalf("PaneHeight() = %d, want 23", w.PaneHeight())
	}
}
