package server

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"syscall"

	"github.com/creack/pty"
)

// spawnedShell is the result of starting a shell child bound to a fresh
// PTY pair: the master the server (and later the front-end) reads/writes,
// and the child's PID for later reaping.
type spawnedShell struct {
	Master *os.File
	PID    int
}

// resolveShell picks the shell for spawned children: $SHELL, falling
// back to the user's passwd entry, then /bin/sh.
func resolveShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	if u, err := user.Current(); err == nil {
		if sh := passwdShell(u); sh != "" {
			return sh
		}
	}
	return "/bin/sh"
}

// passwdShell returns the login shell field of u's /etc/passwd entry, or
// "" if the file or the entry cannot be read (os/user does not expose
// the shell).
func passwdShell(u *user.User) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == u.Username {
			return fields[6]
		}
	}
	return ""
}

// spawnShell creates a new PTY pair sized rows x cols, and execs the
// resolved shell on the slave with a new process session, the slave as
// its controlling terminal, TERM and MUXKIT set, and every descriptor
// numbered 3 and above closed before exec.
func spawnShell(rows, cols int) (*spawnedShell, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("server: open pty: %w", err)
	}
	defer slave.Close()

	if err := pty.Setsize(master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		master.Close()
		return nil, fmt.Errorf("server: setsize: %w", err)
	}

	cmd := exec.Command(resolveShell())
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.Env = append(childEnv(), "TERM=xterm-256color", fmt.Sprintf("MUXKIT=%d", os.Getpid()))
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}
	// Descriptors numbered 3 and above never reach the child: os.Pipe,
	// net.Listen, and every fd this process opens are created CLOEXEC by
	// the Go runtime, and exec.Cmd passes only Stdin/Stdout/Stderr plus
	// ExtraFiles (unused here) across the exec.

	if err := cmd.Start(); err != nil {
		master.Close()
		return nil, fmt.Errorf("server: spawn shell: %w", err)
	}

	return &spawnedShell{Master: master, PID: cmd.Process.Pid}, nil
}

// childEnv returns the parent environment with MUXKIT and TMUX stripped,
// so a shell spawned by the server never inherits a stale nesting marker
// from whatever environment the daemon itself happened to fork from.
func childEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if hasPrefix(e, "MUXKIT=") || hasPrefix(e, "TMUX=") {
			continue
		}
		env = append(env, e)
	}
	return env
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// resizePTY notifies a pane's PTY master of a new per-pane window size.
func resizePTY(master *os.File, rows, cols int) error {
	return pty.Setsize(master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}
