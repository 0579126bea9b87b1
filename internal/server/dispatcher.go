package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"muxkit/internal/obslog"
	"muxkit/internal/wire"
)

// Server owns the session list and the listening socket. The session map
// is mutex-guarded rather than single-goroutine-owned (an Open Question
// decision, see DESIGN.md): every accepted connection runs its own
// goroutine per the §9 design note sanctioning a tasks-and-channels
// translation, and Server.mu is the single point of serialized access
// that stands in for "owned by the main loop".
type Server struct {
	mu       sync.Mutex
	sessions map[int]*Session
	nextID   int

	log *obslog.Logger
}

// New constructs an empty Server.
func New(log *obslog.Logger) *Server {
	if log == nil {
		log = obslog.Nop()
	}
	return &Server{sessions: make(map[int]*Session), log: log}
}

// Serve runs the accept loop: one goroutine per connection, matching the
// server dispatcher's per-connection message handling.
func (s *Server) Serve(ln *net.UnixListener) error {
	for {
		conn, err := ln.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn *net.UnixConn) {
	connID := uuid.NewString()
	defer conn.Close()

	if !s.handshake(conn, connID) {
		return
	}

	var sess *Session
	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.onDisconnect(sess)
				return
			}
			s.log.ProtocolViolation(err.Error())
			s.onDisconnect(sess)
			return
		}

		switch frame.Type {
		case wire.ListSessions:
			writeSizedText(conn, s.listSessionsText())
			return
		case wire.DetachKill:
			id, err := wire.DecodeUint32(frame.Payload)
			if err != nil {
				s.log.ProtocolViolation(err.Error())
				return
			}
			writeSizedText(conn, s.kill(int(id)))
			return
		case wire.Exited:
			s.onDisconnect(sess)
			return
		case wire.Command:
			if sess == nil {
				sess = s.bindNewSession(conn, connID)
			}
			cmd := strings.TrimRight(string(frame.Payload), "\x00")
			s.handleCommand(conn, sess, cmd)
		case wire.Resize:
			if sess == nil {
				sess = s.bindNewSession(conn, connID)
			}
			ws, err := wire.DecodeWinsize(frame.Payload)
			if err != nil {
				s.log.ProtocolViolation(err.Error())
				continue
			}
			sess.mu.Lock()
			sess.WindowSize = ws
			sess.mu.Unlock()
		case wire.GridSave:
			if sess == nil {
				sess = s.bindNewSession(conn, connID)
			}
			if len(frame.Payload) < 4 {
				s.log.ProtocolViolation("GRID_SAVE payload shorter than pane id")
				continue
			}
			paneID, _ := wire.DecodeUint32(frame.Payload[:4])
			blob := append([]byte{}, frame.Payload[4:]...)
			sess.mu.Lock()
			sess.Snapshots[int(paneID)] = blob
			sess.mu.Unlock()
		case wire.Detach:
			if len(frame.Payload) == 0 {
				if sess == nil {
					sess = s.bindNewSession(conn, connID)
				}
				sess.mu.Lock()
				sess.Detached = true
				sess.Conn = nil
				sess.mu.Unlock()
				s.log.Detach(sess.ID)
				return
			}
			id, err := wire.DecodeUint32(frame.Payload)
			if err != nil {
				s.log.ProtocolViolation(err.Error())
				continue
			}
			attached := s.attach(conn, int(id))
			if attached != nil {
				sess = attached
			}
		default:
			s.log.ProtocolViolation(fmt.Sprintf("unexpected message type %v before binding", frame.Type))
		}
	}
}

// handshake performs the VERSION exchange. It returns false if the
// connection should be closed (protocol violation or version mismatch).
func (s *Server) handshake(conn *net.UnixConn, connID string) bool {
	frame, err := wire.ReadFrame(conn)
	if err != nil || frame.Type != wire.Version {
		s.log.ProtocolViolation("missing VERSION handshake")
		return false
	}
	v, err := wire.DecodeUint32(frame.Payload)
	if err != nil {
		s.log.ProtocolViolation(err.Error())
		return false
	}
	if err := wire.WriteRawUint32(conn, wire.ProtocolVersion); err != nil {
		return false
	}
	if v != wire.ProtocolVersion {
		slog.Warn("version mismatch", "conn", connID, "client_version", v, "server_version", wire.ProtocolVersion)
		return false
	}
	return true
}

func (s *Server) bindNewSession(conn *net.UnixConn, connID string) *Session {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	sess := newSessionRecord(id)
	sess.Conn = conn
	s.sessions[id] = sess
	s.mu.Unlock()
	s.log.SessionCreated(id)
	slog.Info("session created", "conn", connID, "session_id", id)
	return sess
}

// onDisconnect handles an EOF/close on conn's goroutine: if the session
// was still marked attached, it is now detached (there is no other way
// to reach it), matching §7's "client disconnect is a clean close; the
// session keeps state according to its detached flag" rule generalized
// to an unexpected drop.
func (s *Server) onDisconnect(sess *Session) {
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.Detached = true
	sess.Conn = nil
	sess.mu.Unlock()
}

// attach looks up a detached session by id and runs the §4.5 attach
// sequence against conn. It returns the session on success, or nil (and
// writes pane_count zero) on failure.
func (s *Server) attach(conn *net.UnixConn, id int) *Session {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		wire.WriteRawUint32(conn, 0)
		return nil
	}

	sess.mu.Lock()
	if !sess.Detached {
		sess.mu.Unlock()
		wire.WriteRawUint32(conn, 0)
		return nil
	}
	live := sess.liveSlots()
	wire.WriteRawUint32(conn, uint32(len(live)))
	for _, idx := range live {
		if err := wire.SendFD(conn, int(sess.Panes[idx].Master.Fd())); err != nil {
			slog.Error("attach: send fd failed", "error", err)
		}
	}
	snapshotCount := len(sess.Snapshots)
	wire.WriteRawUint32(conn, uint32(snapshotCount))
	for paneID, blob := range sess.Snapshots {
		payload := append(wire.EncodeUint32(uint32(paneID)), blob...)
		wire.WriteFrame(conn, wire.Frame{Type: wire.GridSave, Payload: payload})
		delete(sess.Snapshots, paneID)
	}
	sess.Conn = conn
	sess.Detached = false
	sess.mu.Unlock()

	s.log.Attach(id)
	return sess
}

// handleCommand implements COMMAND new-session / pane-split.
func (s *Server) handleCommand(conn *net.UnixConn, sess *Session, cmd string) {
	sess.mu.Lock()
	if sess.PaneCount >= MaxPanes {
		sess.mu.Unlock()
		slog.Warn("pane limit reached", "session_id", sess.ID)
		return
	}
	ws := sess.WindowSize
	sess.mu.Unlock()

	rows, cols := int(ws.Rows), int(ws.Cols)
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}

	shell, err := spawnShell(rows, cols)
	if err != nil {
		slog.Error("spawn shell failed", "error", err, "cmd", cmd)
		return
	}

	sess.mu.Lock()
	idx := sess.freeSlot()
	if idx < 0 {
		sess.mu.Unlock()
		shell.Master.Close()
		syscall.Kill(shell.PID, syscall.SIGKILL)
		return
	}
	sess.Panes[idx] = slot{Master: shell.Master, PID: shell.PID, InUse: true}
	sess.PaneCount++
	sess.mu.Unlock()

	if err := wire.SendFD(conn, int(shell.Master.Fd())); err != nil {
		slog.Error("send fd failed", "error", err)
	}
	s.log.PaneSpawned(sess.ID, idx, shell.PID)
	if cmd == wire.CommandPaneSplit {
		s.log.Split(sess.ID, idx)
	}
}

// kill implements DETACHKILL: SIGKILL every live pane shell, close
// masters, remove and free the session.
func (s *Server) kill(id int) string {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Sprintf("no such session %d", id)
	}

	sess.mu.Lock()
	for i := range sess.Panes {
		if !sess.Panes[i].InUse {
			continue
		}
		syscall.Kill(sess.Panes[i].PID, syscall.SIGKILL)
		sess.Panes[i].Master.Close()
		sess.Panes[i].InUse = false
	}
	conn := sess.Conn
	sess.mu.Unlock()
	if conn != nil {
		conn.Close()
	}

	s.log.Kill(id)
	return fmt.Sprintf("killed session %d", id)
}

// listSessionsText formats LIST_SESSIONS' reply body.
func (s *Server) listSessionsText() string {
	s.mu.Lock()
	ids := make([]int, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	if len(ids) == 0 {
		return "(no sessions)"
	}
	sort.Ints(ids)
	var b strings.Builder
	for i, id := range ids {
		s.mu.Lock()
		sess := s.sessions[id]
		s.mu.Unlock()
		if sess == nil {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s (pid %d)", id, sess.state(), sess.firstPID())
	}
	return b.String()
}

// writeSizedText writes a raw uint32 length followed by the text bytes,
// the reply form LIST_SESSIONS and DETACHKILL both use.
func writeSizedText(w io.Writer, text string) error {
	if err := wire.WriteRawUint32(w, uint32(len(text))); err != nil {
		return err
	}
	_, err := io.WriteString(w, text)
	return err
}
