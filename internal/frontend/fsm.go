// Package frontend implements the attached terminal's side: the FSM and
// event loop, raw-mode terminal handling, prefix-key dispatch, resize and
// split actions, and rendering.
package frontend

// State is one of the front-end's FSM states.
type State int

const (
	Boot State = iota
	Running
	Exiting
	// Resizing exists syntactically but is a no-op; resize is handled
	// synchronously from Running.
	Resizing
)

func (s State) String() string {
	switch s {
	case Boot:
		return "BOOT"
	case Running:
		return "RUNNING"
	case Exiting:
		return "EXITING"
	case Resizing:
		return "RESIZING"
	default:
		return "UNKNOWN"
	}
}

// Event is one input to the FSM.
type Event int

const (
	EnableRawMode Event = iota
	Winch
	ChldExit
	PtyRead
	StdinRead
	EofPty
	EofStdin
	Interrupt
	Detached
	PaneSplit
	// SyncInput is reserved; it is never fired.
	SyncInput
)

func (e Event) String() string {
	switch e {
	case EnableRawMode:
		return "ENABLE_RAW_MODE"
	case Winch:
		return "WINCH"
	case ChldExit:
		return "CHLD_EXIT"
	case PtyRead:
		return "PTY_READ"
	case StdinRead:
		return "STDIN_READ"
	case EofPty:
		return "EOF_PTY"
	case EofStdin:
		return "EOF_STDIN"
	case Interrupt:
		return "INTERRUPT"
	case Detached:
		return "DETACHED"
	case PaneSplit:
		return "PANE_SPLIT"
	case SyncInput:
		return "SYNC_INPUT"
	default:
		return "UNKNOWN"
	}
}

// Action names the side effect a transition stands for. Fire returns it,
// but the loop does not dispatch on it: the Client methods that fire
// events perform the matching work themselves.
type Action string

const (
	ActionNone          Action = ""
	ActionEnterRawMode  Action = "enter_raw_mode"
	ActionResize        Action = "resize"
	ActionRestoreTerm   Action = "restore_terminal"
	ActionFeedRerender  Action = "feed_rerender"
	ActionHandleKeys    Action = "handle_keys"
	ActionSnapshotDetach Action = "snapshot_detach"
	ActionSplit         Action = "split"
)

type transition struct {
	From   State
	On     Event
	To     State
	Action Action
}

// table is the fixed, literal {state, event, next-state, action} array,
// scanned linearly per event. Unknown pairs are ignored; Fire reports
// them with ok=false and does not log them.
var table = []transition{
	{Boot, EnableRawMode, Running, ActionEnterRawMode},
	{Running, Winch, Running, ActionResize},
	{Running, ChldExit, Exiting, ActionRestoreTerm},
	{Running, PtyRead, Running, ActionFeedRerender},
	{Running, StdinRead, Running, ActionHandleKeys},
	{Running, EofPty, Exiting, ActionRestoreTerm},
	{Running, EofStdin, Exiting, ActionNone},
	{Running, Interrupt, Exiting, ActionNone},
	{Running, Detached, Exiting, ActionSnapshotDetach},
	{Running, PaneSplit, Running, ActionSplit},
}

// Machine holds the FSM's current state.
type Machine struct {
	State State
}

// Fire looks up (m.State, event) in the table. EXITING absorbs every
// event unconditionally. Unknown pairs are reported via ok=false and the
// state is left unchanged.
func (m *Machine) Fire(event Event) (next State, action Action, ok bool) {
	if m.State == Exiting {
		return Exiting, ActionNone, true
	}
	for _, t := range table {
		if t.From == m.State && t.On == event {
			m.State = t.To
			return t.To, t.Action, true
		}
	}
	return m.State, ActionNone, false
}
