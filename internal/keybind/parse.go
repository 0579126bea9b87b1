// Package keybind parses the optional keybinds.conf file and watches it
// for live reload.
package keybind

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
)

// Action is a recognized keybinding action.
type Action string

const (
	DetachSession Action = "detach_session"
	NewPane       Action = "new_pane"
	NextPane      Action = "next_pane"
	ScrollUp      Action = "scroll_up"
	ScrollDown    Action = "scroll_down"
)

var recognized = map[string]Action{
	"detach_session": DetachSession,
	"new_pane":       NewPane,
	"next_pane":      NextPane,
	"scroll_up":      ScrollUp,
	"scroll_down":    ScrollDown,
}

// Prefix is the sticky prefix byte (Ctrl+B) that opens the binding table.
const Prefix byte = 0x02

// Bindings maps the literal key byte following the prefix to an action.
//
// handle_key lowercases alphabetic input before lookup, but the table is
// keyed by the literal byte the defaults use (%, [, ]) — those work
// unshifted only because they are not alphabetic. Preserved deliberately,
// see Lookup.
type Bindings map[byte]Action

// Default returns the built-in keybinding table: d -> detach, % ->
// new_pane, o -> next_pane, [ -> scroll_up, ] -> scroll_down.
func Default() Bindings {
	return Bindings{
		'd': DetachSession,
		'%': NewPane,
		'o': NextPane,
		'[': ScrollUp,
		']': ScrollDown,
	}
}

// Lookup resolves a raw input byte to an action, lowercasing alphabetic
// input first (matching the source's handle_key quirk: shift-modified
// symbols like % only work because they aren't alphabetic and so survive
// the lowercasing unchanged).
func (b Bindings) Lookup(key byte) (Action, bool) {
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	a, ok := b[key]
	return a, ok
}

// ParseFile reads a keybinds.conf file, starting from the defaults and
// overlaying each recognized "prefix <key-char> <action-name>" line.
// Unknown actions are ignored. A missing file is not an error: the
// defaults are returned unchanged.
func ParseFile(path string) (Bindings, error) {
	b := Default()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return b, fmt.Errorf("keybind: open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, b)
}

func parse(f *os.File, b Bindings) (Bindings, error) {
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			return b, fmt.Errorf("keybind: line %d: %w", lineNo, err)
		}
		if len(tokens) != 3 || tokens[0] != "prefix" {
			continue
		}
		keyTok, actionTok := tokens[1], tokens[2]
		if len(keyTok) != 1 {
			continue
		}
		action, ok := recognized[actionTok]
		if !ok {
			continue
		}
		b[keyTok[0]] = action
	}
	if err := scanner.Err(); err != nil {
		return b, fmt.Errorf("keybind: scan: %w", err)
	}
	return b, nil
}
