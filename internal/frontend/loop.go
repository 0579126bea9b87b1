package frontend

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"muxkit/internal/keybind"
	"muxkit/internal/pane"
)

// ioEvent is one readiness notification from stdin, a pane master, a
// WINCH signal, or the idle status-bar ticker, fed into the single event
// channel the main loop selects on. This is the channel-based stand-in
// for the cooperative single-suspension-point loop described in §4.6 and
// §9.
type ioEvent struct {
	kind   string // "stdin", "pty", "winch", "tick"
	paneID int
	data   []byte
	err    error
}

// renderNow re-emits the full window, including the status bar's
// elapsed-since-attach indicator.
func (c *Client) renderNow() {
	Render(c.Stdout, c.Window, time.Since(c.AttachedAt))
}

// Run drives the attached client until the FSM reaches EXITING: it reads
// stdin and every pane's PTY master concurrently, dispatches WINCH, and
// re-renders after each event.
func (c *Client) Run() error {
	events := make(chan ioEvent, 64)
	stop := make(chan struct{})
	defer close(stop)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for {
			select {
			case <-winch:
				select {
				case events <- ioEvent{kind: "winch"}:
				case <-stop:
					return
				}
			case <-stop:
				return
			}
		}
	}()

	go readLoop(c.Stdin, "stdin", -1, events, stop)
	for _, p := range c.Window.Panes {
		watchPane(p, events, stop)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				select {
				case events <- ioEvent{kind: "tick"}:
				case <-stop:
					return
				}
			case <-stop:
				return
			}
		}
	}()

	c.renderNow()

	for {
		ev := <-events

		switch ev.kind {
		case "winch":
			c.onResize()
		case "stdin":
			if ev.err != nil {
				c.Machine.Fire(EofStdin)
			} else {
				c.onStdin(ev.data)
			}
		case "pty":
			if ev.err != nil {
				c.onPaneEOF(ev.paneID)
			} else {
				c.onPaneData(ev.paneID, ev.data)
			}
		case "tick":
			// No state change: the idle tick exists only to re-render the
			// status bar's elapsed-since-attach indicator once a second
			// even when no pane or keystroke activity would otherwise
			// trigger a render.
		}

		if c.Machine.State == Exiting {
			break
		}
		c.renderNow()
	}

	c.restoreTerminal()
	return nil
}

// readLoop issues blocking reads against f and forwards each chunk (or
// the terminal read error) on events. It exits on the first error.
func readLoop(f *os.File, kind string, paneID int, events chan<- ioEvent, stop <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			select {
			case events <- ioEvent{kind: kind, paneID: paneID, data: data}:
			case <-stop:
				return
			}
		}
		if err != nil {
			select {
			case events <- ioEvent{kind: kind, paneID: paneID, err: err}:
			case <-stop:
			}
			return
		}
	}
}

func watchPane(p *pane.Pane, events chan<- ioEvent, stop <-chan struct{}) {
	go readLoop(p.Master, "pty", p.ID, events, stop)
}

func (c *Client) paneByID(id int) (*pane.Pane, int) {
	for i, p := range c.Window.Panes {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (c *Client) onStdin(data []byte) {
	c.Machine.Fire(StdinRead)
	for _, b := range data {
		if action, ok := c.HandleByte(b); ok {
			c.runAction(action)
		}
	}
}

func (c *Client) onPaneData(id int, data []byte) {
	p, _ := c.paneByID(id)
	if p == nil {
		return
	}
	p.Feed(data)
	c.Machine.Fire(PtyRead)
}

func (c *Client) onPaneEOF(id int) {
	_, idx := c.paneByID(id)
	if idx < 0 {
		return
	}
	c.Window.RemovePane(idx)
	c.Machine.Fire(ChldExit)
	if len(c.Window.Panes) == 0 {
		c.Machine.Fire(EofPty)
	} else {
		// A single pane's child exiting does not end the session; stay
		// RUNNING by undoing the EXITING transition ChldExit just fired.
		c.Machine.State = Running
	}
}

func (c *Client) onResize() {
	rows, cols, err := Size(c.Stdin)
	if err != nil {
		return
	}
	c.Window.Resize(rows, cols)
	c.sendResize(rows, cols)
	c.Machine.Fire(Winch)
}

func (c *Client) runAction(action keybind.Action) {
	switch action {
	case keybind.DetachSession:
		c.Machine.Fire(Detached)
		c.DetachSelf()
	case keybind.NewPane:
		c.Machine.Fire(PaneSplit)
		if p, err := c.splitAndWatch(); err == nil && p != nil {
			// newly added pane already watched
		}
	case keybind.NextPane:
		c.Window.NextPane()
	case keybind.ScrollUp:
		if p := c.Window.ActivePane(); p != nil {
			p.Grid.ScrollUp(1)
			p.Dirty = true
		}
	case keybind.ScrollDown:
		if p := c.Window.ActivePane(); p != nil {
			p.Grid.ScrollDown(1)
			p.Dirty = true
		}
	}
}

// splitAndWatch requests a new pane and starts reading its master. The
// caller's event loop learns about the pane through its own watchPane
// goroutine rather than through the returned value; it is returned only
// so callers can detect failure.
func (c *Client) splitAndWatch() (*pane.Pane, error) {
	before := len(c.Window.Panes)
	if err := c.Split(); err != nil {
		return nil, err
	}
	if len(c.Window.Panes) <= before {
		return nil, nil
	}
	p := c.Window.Panes[len(c.Window.Panes)-1]
	return p, nil
}
