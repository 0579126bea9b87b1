package pane

import "testing"

func TestNotifyPTYSizeNilMasterIsNoop(t *testing.T) {
	p := &Pane{ID: 1, SX: 80, SY: 24}
	if err := p.NotifyPTYSize(); err != nil {
		t.Fatalf("NotifyPTYSize with nil master should be a no-op, got %v", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	p := &Pane{ID: 7}
	p.Init(10, 4)
	p.Grid.CursorX, p.Grid.CursorY = 3, 2
	row := p.Grid.Row(0)
	for i := range row {
		row[i].SetRune('x')
	}

	data := p.Snapshot()

	p2 := &Pane{ID: 7}
	if err := p2.Restore(data); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if p2.SX != 10 || p2.SY != 4 {
		t.Fatalf("size after restore = %dx%d, want 10x4", p2.SX, p2.SY)
	}
	for x := 0; x < 10; x++ {
		if p2.Grid.At(x, 0).Rune() != 'x' {
			t.Fatalf("cell (%d,0) = %q, want 'x'", x, p2.Grid.At(x, 0).Rune())
		}
	}
}
