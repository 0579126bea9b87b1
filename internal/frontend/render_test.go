package frontend

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"muxkit/internal/pane"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{45 * time.Second, "0:45"},
		{90 * time.Second, "1:30"},
		{3661 * time.Second, "1:01:01"},
	}
	for _, c := range cases {
		if got := formatElapsed(c.d); got != c.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestRenderPaneSkipsWhenNotDirty(t *testing.T) {
	w := pane.NewWindow("main", 5, 20)
	w.AddPane(nil)
	p := w.Panes[0]

	var buf bytes.Buffer
	renderPane(&buf, p)
	if buf.Len() == 0 {
		t.Fatalf("expected first render of a dirty pane to write output")
	}
	if p.Dirty {
		t.Fatalf("renderPane should clear Dirty after drawing")
	}

	buf.Reset()
	renderPane(&buf, p)
	if buf.Len() != 0 {
		t.Fatalf("renderPane of a clean pane should write nothing, got %q", buf.String())
	}

	p.Dirty = true
	buf.Reset()
	renderPane(&buf, p)
	if buf.Len() == 0 {
		t.Fatalf("renderPane should redraw once marked Dirty again")
	}
}

func TestRenderStatusBarIncludesElapsed(t *testing.T) {
	w := pane.NewWindow("main", 5, 40)
	w.AddPane(nil)

	var buf bytes.Buffer
	renderStatusBar(&buf, w, 90*time.Second)
	if !strings.Contains(buf.String(), "1:30") {
		t.Fatalf("status bar %q missing elapsed indicator", buf.String())
	}
}
