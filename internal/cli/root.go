// Package cli implements the command-line surface of §6: the recognized
// invocations (attach new, -l, -s, -k, -h, new-session/-n) and the
// hidden _daemon subcommand the client re-execs into when it needs to
// lazily fork a server. Argument parsing itself is named a non-goal by
// the core spec, but the teacher's own CLI-framework choice (cobra)
// still applies to how these invocations are wired up.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"muxkit/internal/obslog"
	"muxkit/internal/runtimedir"
	"muxkit/internal/server"
	"muxkit/internal/version"
)

// NewRootCmd builds the root cobra command. With no subcommand and no
// -l/-s/-k flag, its RunE attaches a new session to the current
// terminal — muxkit's default action, unlike most cobra programs where
// running with no arguments prints help.
func NewRootCmd() *cobra.Command {
	var (
		list       bool
		attachID   int
		killID     int
		newSession bool
	)

	root := &cobra.Command{
		Use:     "muxkit",
		Short:   "Terminal multiplexer",
		Version: version.String,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case list:
				return runList()
			case cmd.Flags().Changed("session"):
				return runAttachExisting(attachID)
			case cmd.Flags().Changed("kill"):
				return runKill(killID)
			case newSession:
				return runNewSessionDetached()
			default:
				return runAttachNew()
			}
		},
	}
	root.Flags().BoolVarP(&list, "list", "l", false, "list sessions")
	root.Flags().IntVarP(&attachID, "session", "s", 0, "attach to detached session <id>")
	root.Flags().IntVarP(&killID, "kill", "k", 0, "kill session <id>")
	root.Flags().BoolVarP(&newSession, "new-session", "n", false, "create a session without attaching")

	root.AddCommand(newNewSessionCmd())
	root.AddCommand(newDaemonCmd())

	return root
}

// Main is the package entry point cmd/muxkit/main.go calls. It reports
// the exit code per §6: 0 on success, -1 on usage or runtime failure.
func Main() int {
	cmd := NewRootCmd()
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		if ue, ok := err.(*usageError); ok {
			fmt.Fprintln(os.Stderr, ue.Error())
			return ue.code
		}
		fmt.Fprintln(os.Stderr, "muxkit:", err)
		return -1
	}
	return 0
}

// usageError carries an explicit exit code for the two non-generic exit
// paths §7 names: nesting refusal (non-zero, no server contact) and
// attach-miss (the spec actually wants exit 0 there, handled inline in
// attach.go rather than through this type).
type usageError struct {
	code int
	msg  string
}

func (e *usageError) Error() string { return e.msg }

func nestingRefused() error {
	return &usageError{code: 1, msg: "refusing to nest: already inside a muxkit session (MUXKIT or TMUX is set)"}
}

func isNested() bool {
	return os.Getenv("MUXKIT") != "" || os.Getenv("TMUX") != ""
}

// requireTTY refuses to attach when standard input/output are not a
// terminal, matching the teacher's go-isatty-gated attach guard.
func requireTTY() error {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("muxkit: standard input/output must be a terminal")
	}
	return nil
}

func newClientLogger() *obslog.Logger {
	path, err := runtimedir.ClientLogPath()
	if err != nil {
		return obslog.Nop()
	}
	return obslog.New(true, path, "client")
}

func newServerLogger() *obslog.Logger {
	path, err := runtimedir.ServerLogPath()
	if err != nil {
		return obslog.Nop()
	}
	return obslog.New(true, path, "server")
}

// newDaemonCmd is the hidden re-exec target server.Connect's lazy fork
// shells out to: it opens the listening socket and runs the accept loop
// until the process is killed.
func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "_daemon",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := server.New(newServerLogger())
			return server.RunDaemon(s)
		},
	}
}
