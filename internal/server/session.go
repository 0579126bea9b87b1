// Package server implements the daemon: session/pane lifecycle, the
// socket accept loop and per-connection dispatcher, daemonization, and
// child reaping.
package server

import (
	"net"
	"os"
	"sync"

	"muxkit/internal/wire"
)

// MaxPanes bounds a session's pane slots.
const MaxPanes = 64

type slot struct {
	Master *os.File
	PID    int
	InUse  bool
}

// Session is one server-side container of panes, surviving front-end
// disconnection. Its id is assigned monotonically and never reused.
type Session struct {
	mu sync.Mutex

	ID       int
	Conn     *net.UnixConn // nil when detached
	Detached bool

	Panes     [MaxPanes]slot
	PaneCount int

	// Snapshots caches a detached pane's grid bytes until the next
	// attach consumes and frees it.
	Snapshots map[int][]byte

	// WindowSize is the most recently reported RESIZE payload. It is used
	// only as the initial size of a PTY that handleCommand spawns; it is
	// never applied to an existing pane's PTY, where the front-end is
	// authoritative for per-pane sizing.
	WindowSize wire.Winsize
}

func newSessionRecord(id int) *Session {
	return &Session{ID: id, Snapshots: make(map[int][]byte)}
}

// freeSlot returns the index of the first unused pane slot, or -1 if the
// session is already at MaxPanes. Caller must hold s.mu.
func (s *Session) freeSlot() int {
	for i := range s.Panes {
		if !s.Panes[i].InUse {
			return i
		}
	}
	return -1
}

// liveSlots returns the indices of all in-use pane slots. Caller must
// hold s.mu.
func (s *Session) liveSlots() []int {
	var out []int
	for i := range s.Panes {
		if s.Panes[i].InUse {
			out = append(out, i)
		}
	}
	return out
}

// firstPID returns the PID of any live pane, or 0 if the session has
// none (used only for the human-readable LIST_SESSIONS line).
func (s *Session) firstPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Panes {
		if s.Panes[i].InUse {
			return s.Panes[i].PID
		}
	}
	return 0
}

// state reports "attached" or "detached" for LIST_SESSIONS.
func (s *Session) state() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Detached {
		return "detached"
	}
	return "attached"
}
