package runtimedir

import (
	"os"
	"testing"
)

func TestDirUsesTMPDIRAndUID(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat(%s): %v", dir, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}
	if info.Mode().Perm() != 0700 {
		t.Fatalf("mode = %v, want 0700", info.Mode().Perm())
	}
}

func TestSocketAndLockPathsAreSiblings(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	sock, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	lock, err := LockPath()
	if err != nil {
		t.Fatalf("LockPath: %v", err)
	}
	if lock != sock+".lock" {
		t.Fatalf("lock path = %s, want %s.lock", lock, sock)
	}
}
