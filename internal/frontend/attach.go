package frontend

import (
	"fmt"

	"muxkit/internal/wire"
)

// Handshake performs the VERSION exchange. The server's reply bypasses
// frame headers (a bare uint32), the one documented protocol quirk.
func (c *Client) Handshake() error {
	if err := wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Version, Payload: wire.EncodeUint32(wire.ProtocolVersion)}); err != nil {
		return err
	}
	v, err := wire.ReadRawUint32(c.Conn)
	if err != nil {
		return err
	}
	if v != wire.ProtocolVersion {
		return fmt.Errorf("frontend: server protocol version %d does not match client %d", v, wire.ProtocolVersion)
	}
	return nil
}

func (c *Client) sendResize(rows, cols int) error {
	ws := wire.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
	return wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Resize, Payload: wire.EncodeWinsize(ws)})
}

// NewSession sends RESIZE then COMMAND new-session and adds the one pane
// the server spawns in reply.
func (c *Client) NewSession(rows, cols int) error {
	if err := c.sendResize(rows, cols); err != nil {
		return err
	}
	payload := append([]byte(wire.CommandNewSession), 0)
	if err := wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Command, Payload: payload}); err != nil {
		return err
	}
	master, err := wire.RecvFD(c.Conn)
	if err != nil {
		return err
	}
	c.Window.AddPane(master)
	return nil
}

// AttachExisting runs the §4.5 attach sequence for an already-running
// session: DETACH with a target id, pane_count, one FD per live pane,
// RESIZE, then snapshot_count GRID_SAVE frames replayed into the panes
// that were just created.
//
// The server assigns pane slot indices independently of the order panes
// are added here; this implementation assumes (as the simple case in
// §4.5 does) that slot indices are dense and assigned in the same order
// panes were first spawned, so the Nth FD received becomes the pane at
// local index N and GRID_SAVE's pane id addresses that same index.
func (c *Client) AttachExisting(id, rows, cols int) error {
	if err := wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Detach, Payload: wire.EncodeUint32(uint32(id))}); err != nil {
		return err
	}
	n, err := wire.ReadRawUint32(c.Conn)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("frontend: session %d is not attachable", id)
	}
	for i := uint32(0); i < n; i++ {
		master, err := wire.RecvFD(c.Conn)
		if err != nil {
			return err
		}
		c.Window.AddPane(master)
	}
	if err := c.sendResize(rows, cols); err != nil {
		return err
	}

	snapCount, err := wire.ReadRawUint32(c.Conn)
	if err != nil {
		return err
	}
	for i := uint32(0); i < snapCount; i++ {
		frame, err := wire.ReadFrame(c.Conn)
		if err != nil {
			return err
		}
		if frame.Type != wire.GridSave || len(frame.Payload) < 4 {
			continue
		}
		paneID, _ := wire.DecodeUint32(frame.Payload[:4])
		blob := frame.Payload[4:]
		if int(paneID) < len(c.Window.Panes) {
			c.Window.Panes[paneID].Restore(blob)
		}
	}

	c.SessionID = id
	return nil
}

// Split requests a new pane in the current session.
func (c *Client) Split() error {
	payload := append([]byte(wire.CommandPaneSplit), 0)
	if err := wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Command, Payload: payload}); err != nil {
		return err
	}
	master, err := wire.RecvFD(c.Conn)
	if err != nil {
		return err
	}
	c.Window.AddPane(master)
	return nil
}

// DetachSelf snapshots every pane's grid to the server and sends the
// zero-length DETACH that marks the session detached without killing it.
func (c *Client) DetachSelf() error {
	for _, p := range c.Window.Panes {
		blob := p.Snapshot()
		payload := append(wire.EncodeUint32(uint32(p.ID)), blob...)
		if err := wire.WriteFrame(c.Conn, wire.Frame{Type: wire.GridSave, Payload: payload}); err != nil {
			return err
		}
	}
	return wire.WriteFrame(c.Conn, wire.Frame{Type: wire.Detach, Payload: nil})
}
