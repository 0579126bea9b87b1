// Package obslog is the server's and front-end's append-only jsonl event
// log (server.log / client.log): session and pane lifecycle events,
// modeled on the teacher's internal/activitylog package but generalized
// from "agent activity events" to "session/pane lifecycle events".
//
// Logging is always-on but best-effort: a failure to open the log file
// degrades to a no-op and never blocks startup.
package obslog

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Logger appends one JSON object per line to a log file.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	role string // "server" or "client"
}

// New opens path for append and returns a Logger bound to role. If
// enabled is false, or the file cannot be opened, the returned Logger is
// a silent no-op.
func New(enabled bool, path, role string) *Logger {
	l := &Logger{role: role}
	if !enabled {
		return l
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return l
	}
	l.f = f
	return l
}

// Nop returns a Logger that discards every event.
func Nop() *Logger { return &Logger{} }

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}

func (l *Logger) emit(event string, fields map[string]any) {
	if l == nil || l.f == nil {
		return
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"role":  l.role,
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line = append(line, '\n')
	l.f.Write(line)
}

func (l *Logger) SessionCreated(sessionID int) {
	l.emit("session_created", map[string]any{"session_id": sessionID})
}

func (l *Logger) SessionDestroyed(sessionID int) {
	l.emit("session_destroyed", map[string]any{"session_id": sessionID})
}

func (l *Logger) PaneSpawned(sessionID, paneID, pid int) {
	l.emit("pane_spawned", map[string]any{"session_id": sessionID, "pane_id": paneID, "pid": pid})
}

func (l *Logger) PaneReaped(sessionID, paneID int) {
	l.emit("pane_reaped", map[string]any{"session_id": sessionID, "pane_id": paneID})
}

func (l *Logger) ProtocolViolation(reason string) {
	l.emit("protocol_violation", map[string]any{"reason": reason})
}

func (l *Logger) Attach(sessionID int) {
	l.emit("attach", map[string]any{"session_id": sessionID})
}

func (l *Logger) Detach(sessionID int) {
	l.emit("detach", map[string]any{"session_id": sessionID})
}

func (l *Logger) Resize(rows, cols int) {
	l.emit("resize", map[string]any{"rows": rows, "cols": cols})
}

func (l *Logger) Split(sessionID, paneID int) {
	l.emit("split", map[string]any{"session_id": sessionID, "pane_id": paneID})
}

func (l *Logger) Kill(sessionID int) {
	l.emit("kill", map[string]any{"session_id": sessionID})
}
