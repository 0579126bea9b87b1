package server

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"muxkit/internal/runtimedir"
)

// Connect dials the per-user socket, lazily forking a server if nothing
// is listening. It blocks signals across the fork by delegating to the
// OS fork/exec boundary (a forked child starts with a clean signal mask
// inherited from exec, so there is no window where this process's
// handlers run in the child).
func Connect() (net.Conn, error) {
	sockPath, err := runtimedir.SocketPath()
	if err != nil {
		return nil, err
	}

	if conn, err := net.DialTimeout("unix", sockPath, 500*time.Millisecond); err == nil {
		return conn, nil
	}

	if err := forkServer(sockPath); err != nil {
		return nil, err
	}

	return net.DialTimeout("unix", sockPath, 500*time.Millisecond)
}

// forkServer holds an exclusive advisory lock on <socket>.lock across
// "unlink stale socket + fork server", then re-execs this binary with
// the hidden _daemon subcommand, redirecting its stdio to /dev/null, and
// waits (bounded) for the socket to appear.
func forkServer(sockPath string) error {
	lockPath, err := runtimedir.LockPath()
	if err != nil {
		return err
	}
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("server: acquire daemonize lock: %w", err)
	}
	defer lock.Unlock()

	// Re-check under the lock: another client may have already started
	// the server while we were waiting for it.
	if conn, err := net.DialTimeout("unix", sockPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return nil
	}
	os.Remove(sockPath)

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("server: find executable: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("server: open /dev/null: %w", err)
	}
	defer devNull.Close()

	cmd := exec.Command(exe, "_daemon")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("server: start daemon: %w", err)
	}
	go cmd.Wait()

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(sockPath); err == nil {
			return nil
		}
	}
	return fmt.Errorf("server: daemon did not start (socket %s not found)", sockPath)
}

// RunDaemon is the entry point for the hidden _daemon subcommand: it
// opens the listening socket (removing any stale one) and runs the
// accept loop and SIGCHLD reaper until the listener is closed.
func RunDaemon(s *Server) error {
	sockPath, err := runtimedir.SocketPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(sockPath); err == nil {
		if conn, err := net.DialTimeout("unix", sockPath, 200*time.Millisecond); err == nil {
			conn.Close()
			return fmt.Errorf("server: a daemon is already listening on %s", sockPath)
		}
		os.Remove(sockPath)
	}

	addr, err := net.ResolveUnixAddr("unix", sockPath)
	if err != nil {
		return fmt.Errorf("server: resolve socket addr: %w", err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	defer func() {
		ln.Close()
		os.Remove(sockPath)
	}()

	stop := make(chan struct{})
	go s.WatchChildren(stop)
	defer close(stop)

	return s.Serve(ln)
}
