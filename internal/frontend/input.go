package frontend

import (
	"muxkit/internal/keybind"
)

// HandleByte implements §4.6 prefix-key dispatch for a single input
// byte. It reports the action to run, if any; the caller (loop.go) owns
// actually performing split/detach/next-pane/scroll side effects. This
// function itself only updates the prefix and history-mode state and
// forwards bytes to the active pane's master.
func (c *Client) HandleByte(b byte) (action keybind.Action, ok bool) {
	active := c.Window.ActivePane()

	if b == keybind.Prefix {
		if c.PrefixSticky {
			c.PrefixSticky = false
			c.forwardToActive([]byte{keybind.Prefix})
			return "", false
		}
		c.PrefixSticky = true
		return "", false
	}

	if c.PrefixSticky {
		c.PrefixSticky = false
		if a, bound := c.Bindings.Lookup(b); bound {
			return a, true
		}
		c.forwardToActive([]byte{keybind.Prefix, b})
		return "", false
	}

	if active != nil && active.Grid.ScrollOffset != 0 {
		active.Grid.ScrollOffset = 0
		active.Dirty = true
		if b == 0x1b || b == 'q' {
			return "", false // swallowed
		}
		c.forwardToActive([]byte{b})
		return "", false
	}

	c.forwardToActive([]byte{b})
	return "", false
}

func (c *Client) forwardToActive(b []byte) {
	p := c.Window.ActivePane()
	if p == nil || p.Master == nil {
		return
	}
	p.Master.Write(b)
}
