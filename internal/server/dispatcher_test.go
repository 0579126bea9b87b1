package server

import (
	"net"
	"os"
	"syscall"
	"testing"

	"muxkit/internal/obslog"
	"muxkit/internal/wire"
)

func unixConnPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	f0 := os.NewFile(uintptr(fds[0]), "sp0")
	f1 := os.NewFile(uintptr(fds[1]), "sp1")
	c0, err := net.FileConn(f0)
	if err != nil {
		t.Fatalf("FileConn: %v", err)
	}
	c1, err := net.FileConn(f1)
	if err != nil {
		t.Fatalf("FileConn: %v", err)
	}
	f0.Close()
	f1.Close()
	uc0, ok := c0.(*net.UnixConn)
	if !ok {
		t.Fatalf("not a UnixConn")
	}
	uc1, ok := c1.(*net.UnixConn)
	if !ok {
		t.Fatalf("not a UnixConn")
	}
	return uc0, uc1
}

func TestListSessionsTextEmpty(t *testing.T) {
	s := New(obslog.Nop())
	if got := s.listSessionsText(); got != "(no sessions)" {
		t.Fatalf("got %q, want %q", got, "(no sessions)")
	}
}

func TestListSessionsTextFormatsEntries(t *testing.T) {
	s := New(obslog.Nop())
	sess := newSessionRecord(0)
	sess.Detached = true
	s.sessions[0] = sess
	s.nextID = 1

	got := s.listSessionsText()
	want := "0: detached (pid 0)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestKillUnknownSession(t *testing.T) {
	s := New(obslog.Nop())
	got := s.kill(99)
	want := "no such session 99"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestKillRemovesSession(t *testing.T) {
	s := New(obslog.Nop())
	s.sessions[0] = newSessionRecord(0)
	got := s.kill(0)
	if got != "killed session 0" {
		t.Fatalf("got %q, want %q", got, "killed session 0")
	}
	if _, ok := s.sessions[0]; ok {
		t.Fatalf("session 0 should have been removed")
	}
}

func TestAttachUnknownSessionWritesZero(t *testing.T) {
	s := New(obslog.Nop())
	a, b := unixConnPair(t)
	defer a.Close()
	defer b.Close()

	got := s.attach(a, 42)
	if got != nil {
		t.Fatalf("attach of unknown session returned non-nil")
	}
	n, err := wire.ReadRawUint32(b)
	if err != nil {
		t.Fatalf("ReadRawUint32: %v", err)
	}
	if n != 0 {
		t.Fatalf("pane count = %d, want 0", n)
	}
}

func TestAttachNotDetachedWritesZero(t *testing.T) {
	s := New(obslog.Nop())
	sess := newSessionRecord(0)
	sess.Detached = false
	s.sessions[0] = sess
	a, b := unixConnPair(t)
	defer a.Close()
	defer b.Close()

	s.attach(a, 0)
	n, err := wire.ReadRawUint32(b)
	if err != nil {
		t.Fatalf("ReadRawUint32: %v", err)
	}
	if n != 0 {
		t.Fatalf("pane count = %d, want 0", n)
	}
}

func TestHandshakeVersionMismatchCloses(t *testing.T) {
	s := New(obslog.Nop())
	a, b := unixConnPair(t)
	defer a.Close()
	defer b.Close()

	go wire.WriteFrame(b, wire.Frame{Type: wire.Version, Payload: wire.EncodeUint32(999)})

	ok := s.handshake(a, "test")
	if ok {
		t.Fatalf("handshake should fail on version mismatch")
	}
	v, err := wire.ReadRawUint32(b)
	if err != nil {
		t.Fatalf("ReadRawUint32: %v", err)
	}
	if v != wire.ProtocolVersion {
		t.Fatalf("server version = %d, want %d", v, wire.ProtocolVersion)
	}
}
