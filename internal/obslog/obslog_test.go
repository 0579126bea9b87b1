package obslog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func TestSessionCreatedWritesEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l := New(true, path, "server")
	defer l.Close()

	l.SessionCreated(3)

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var e struct {
		Event     string `json:"event"`
		SessionID int    `json:"session_id"`
		Role      string `json:"role"`
		TS        string `json:"ts"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Event != "session_created" || e.SessionID != 3 || e.Role != "server" || e.TS == "" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l := New(false, path, "server")
	defer l.Close()

	l.SessionCreated(1)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be created when disabled")
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop()
	l.SessionCreated(1)
	l.PaneSpawned(1, 0, 1234)
	l.ProtocolViolation("short header")
	l.Close()
}
