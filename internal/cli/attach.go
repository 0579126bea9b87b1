package cli

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"muxkit/internal/frontend"
	"muxkit/internal/keybind"
	"muxkit/internal/runtimedir"
	"muxkit/internal/server"
	"muxkit/internal/wire"
)

// dial connects to the per-user socket (lazily forking the daemon). The
// caller performs the version handshake separately (see handshake).
func dial() (*net.UnixConn, error) {
	conn, err := server.Connect()
	if err != nil {
		return nil, fmt.Errorf("muxkit: connect: %w", err)
	}
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("muxkit: unexpected connection type %T", conn)
	}
	return uc, nil
}

func handshake(conn *net.UnixConn) error {
	if err := wire.WriteFrame(conn, wire.Frame{Type: wire.Version, Payload: wire.EncodeUint32(wire.ProtocolVersion)}); err != nil {
		return err
	}
	v, err := wire.ReadRawUint32(conn)
	if err != nil {
		return err
	}
	if v != wire.ProtocolVersion {
		conn.Close()
		return fmt.Errorf("muxkit: server protocol version %d does not match client %d", v, wire.ProtocolVersion)
	}
	return nil
}

// readSizedText reads LIST_SESSIONS'/DETACHKILL's reply form: a raw
// uint32 length followed by that many text bytes.
func readSizedText(r io.Reader) (string, error) {
	n, err := wire.ReadRawUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("muxkit: read reply text: %w", err)
	}
	return string(buf), nil
}

// runList sends LIST_SESSIONS and prints the reply verbatim.
func runList() error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := handshake(conn); err != nil {
		return err
	}
	if err := wire.WriteFrame(conn, wire.Frame{Type: wire.ListSessions}); err != nil {
		return err
	}
	text, err := readSizedText(conn)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// runKill sends DETACHKILL for id and prints the server's status reply.
func runKill(id int) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := handshake(conn); err != nil {
		return err
	}
	if err := wire.WriteFrame(conn, wire.Frame{Type: wire.DetachKill, Payload: wire.EncodeUint32(uint32(id))}); err != nil {
		return err
	}
	text, err := readSizedText(conn)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// runAttachNew implements "no arguments": refuse nesting, then run the
// §4.6 new-session startup flow and enter the interactive loop.
func runAttachNew() error {
	if isNested() {
		return nestingRefused()
	}
	if err := requireTTY(); err != nil {
		return err
	}

	conn, err := dial()
	if err != nil {
		return err
	}
	if err := handshake(conn); err != nil {
		return err
	}

	rows, cols, err := frontend.Size(os.Stdin)
	if err != nil {
		conn.Close()
		return fmt.Errorf("muxkit: get terminal size: %w", err)
	}

	bindings := loadBindings()
	client := frontend.NewClient(conn, os.Stdin, os.Stdout, "muxkit", rows, cols, newClientLogger())
	client.Bindings = bindings

	if err := client.NewSession(rows, cols); err != nil {
		conn.Close()
		return fmt.Errorf("muxkit: new-session: %w", err)
	}

	return runAttached(client)
}

// runAttachExisting implements "-s <id>": the §4.5/§4.6 attach sequence
// against an already-running detached session.
func runAttachExisting(id int) error {
	if err := requireTTY(); err != nil {
		return err
	}

	conn, err := dial()
	if err != nil {
		return err
	}
	if err := handshake(conn); err != nil {
		return err
	}

	rows, cols, err := frontend.Size(os.Stdin)
	if err != nil {
		conn.Close()
		return fmt.Errorf("muxkit: get terminal size: %w", err)
	}

	bindings := loadBindings()
	client := frontend.NewClient(conn, os.Stdin, os.Stdout, "muxkit", rows, cols, newClientLogger())
	client.Bindings = bindings

	if err := client.AttachExisting(id, rows, cols); err != nil {
		conn.Close()
		// Attach miss is not a system error (§7): print and exit 0.
		fmt.Fprintf(os.Stderr, "muxkit: no such session %d\n", id)
		return nil
	}

	return runAttached(client)
}

// runAttached boots raw mode / alt screen, starts watching
// keybinds.conf for live reload, and drives the event loop until the
// FSM reaches EXITING.
func runAttached(client *frontend.Client) error {
	if err := client.Boot(); err != nil {
		client.Conn.Close()
		return fmt.Errorf("muxkit: enter raw mode: %w", err)
	}
	defer client.Conn.Close()

	if path, err := runtimedir.KeybindsPath(); err == nil {
		if w, err := keybind.Watch(path, func(b keybind.Bindings) { client.Bindings = b }); err == nil {
			defer w.Close()
		}
	}

	return client.Run()
}

// runNewSessionDetached implements "new-session"/-n: create a session
// without ever entering the interactive loop, leaving it detached for a
// later -s to pick up. The server records the session the moment the
// first session-bound frame arrives on the connection (the RESIZE that
// NewSession sends before its COMMAND); this client immediately
// snapshots (an empty grid) and detaches rather than backgrounding a
// whole process tree, since the session's persistence comes entirely
// from the server holding the PTY masters and shell children open.
func runNewSessionDetached() error {
	if isNested() {
		return nestingRefused()
	}

	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := handshake(conn); err != nil {
		return err
	}

	const rows, cols = 24, 80
	client := frontend.NewClient(conn, os.Stdin, os.Stdout, "muxkit", rows, cols, newClientLogger())
	if err := client.NewSession(rows, cols); err != nil {
		return fmt.Errorf("muxkit: new-session: %w", err)
	}
	if err := client.DetachSelf(); err != nil {
		return fmt.Errorf("muxkit: detach: %w", err)
	}
	return nil
}

func loadBindings() keybind.Bindings {
	path, err := runtimedir.KeybindsPath()
	if err != nil {
		return keybind.Default()
	}
	b, err := keybind.ParseFile(path)
	if err != nil {
		return keybind.Default()
	}
	return b
}

// newNewSessionCmd wires the "new-session" invocation form (the table
// also accepts the -n/--new-session root flag for the same action).
func newNewSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-session",
		Short: "create a session without attaching",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNewSessionDetached()
		},
	}
}
