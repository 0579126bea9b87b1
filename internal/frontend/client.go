package frontend

import (
	"net"
	"os"
	"time"

	"muxkit/internal/keybind"
	"muxkit/internal/obslog"
	"muxkit/internal/pane"
)

// Client is one attached front-end: the controlling terminal, the
// connection to the server, and the window of panes it is driving.
type Client struct {
	Window *pane.Window
	Conn   *net.UnixConn
	Stdin  *os.File
	Stdout *os.File

	TermState *TermState
	Machine   Machine
	Bindings  keybind.Bindings

	PrefixSticky bool
	SessionID    int

	// AttachedAt is when Boot entered raw mode; the status bar renders an
	// elapsed-since-attach indicator off it, refreshed once a second even
	// with no PTY activity (see loop.go's idle ticker).
	AttachedAt time.Time

	Log *obslog.Logger
}

// NewClient constructs a Client bound to conn with the default
// keybindings and an empty window.
func NewClient(conn *net.UnixConn, stdin, stdout *os.File, windowName string, rows, cols int, log *obslog.Logger) *Client {
	if log == nil {
		log = obslog.Nop()
	}
	return &Client{
		Window:   pane.NewWindow(windowName, rows, cols),
		Conn:     conn,
		Stdin:    stdin,
		Stdout:   stdout,
		Bindings: keybind.Default(),
		Log:      log,
	}
}

// Boot enters raw mode and the alternate screen, and fires
// ENABLE_RAW_MODE on the FSM.
func (c *Client) Boot() error {
	ts, err := EnterRawMode(c.Stdin)
	if err != nil {
		return err
	}
	c.TermState = ts
	EnterAltScreen(c.Stdout)
	c.AttachedAt = time.Now()
	c.Machine.Fire(EnableRawMode)
	return nil
}

// restoreTerminal exits the alternate screen and restores the original
// terminal mode. Safe to call more than once (every exit path calls it).
func (c *Client) restoreTerminal() {
	ExitAltScreen(c.Stdout)
	c.TermState.Restore()
}
