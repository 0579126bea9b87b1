// Package runtimedir locates the per-user runtime directory that holds
// the server socket, advisory lock, optional keybinding file, and logs.
// The layout and the TMPDIR fallback mirror the teacher's
// internal/socketdir and internal/config ConfigDir conventions.
package runtimedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns ${TMPDIR:-/tmp}/muxkit-<uid>/, creating it with mode 0700
// if it does not already exist.
func Dir() (string, error) {
	base := os.Getenv("TMPDIR")
	if base == "" {
		base = "/tmp"
	}
	dir := filepath.Join(base, fmt.Sprintf("muxkit-%d", os.Getuid()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("runtimedir: mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// SocketPath returns the per-user listening socket path.
func SocketPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "default"), nil
}

// LockPath returns the advisory-lock sibling of the socket, used to
// serialize "unlink stale socket + fork server" across racing clients.
func LockPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "default.lock"), nil
}

// KeybindsPath returns the optional keybinding file path.
func KeybindsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "keybinds.conf"), nil
}

// ServerLogPath and ClientLogPath return the per-process jsonl event log
// paths.
func ServerLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "server.log"), nil
}

func ClientLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "client.log"), nil
}
