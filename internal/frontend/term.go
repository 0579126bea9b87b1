package frontend

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// TermState captures enough of the controlling terminal to restore it on
// every exit path (normal end, detach, child death).
type TermState struct {
	fd       int
	oldState *term.State
}

// EnterRawMode disables canonical input, echo, and signal generation, and
// disables CR->NL input translation, capturing the original settings for
// Restore.
func EnterRawMode(f *os.File) (*TermState, error) {
	fd := int(f.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("frontend: enable raw mode: %w", err)
	}
	return &TermState{fd: fd, oldState: old}, nil
}

// Restore puts the terminal back into its original mode. Safe to call
// more than once; a nil TermState or nil saved state make it a no-op.
func (t *TermState) Restore() error {
	if t == nil || t.oldState == nil {
		return nil
	}
	return term.Restore(t.fd, t.oldState)
}

// Size reads the current terminal size in (rows, cols).
func Size(f *os.File) (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("frontend: get size: %w", err)
	}
	return rows, cols, nil
}

// EnterAltScreen and ExitAltScreen switch the terminal to/from the
// alternate screen buffer.
const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
)

func EnterAltScreen(w *os.File) { w.WriteString(enterAltScreen) }
func ExitAltScreen(w *os.File)  { w.WriteString(exitAltScreen) }
