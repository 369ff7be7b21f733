package editor

import "errors"

// State is the edit state of a Session
type State int

const (
	// StateRest means no Line call is active
	StateRest State = iota
	// StateEditing means a caller is inside Line
	StateEditing
	// StateCleanedUp means the terminal was restored; terminal for the session
	StateCleanedUp
)

func (s State) String() string {
	switch s {
	case StateRest:
		return "rest"
	case StateEditing:
		return "editing"
	case StateCleanedUp:
		return "cleaned-up"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when Line is called while another Line is active
	ErrBusy = errors.New("another caller is already editing")

	// ErrCleanedUp is returned when Line is called after Cleanup
	ErrCleanedUp = errors.New("terminal already cleaned up")
)

// Log paths reported to a Recorder
const (
	LogDirect      = "direct"
	LogInterleaved = "interleaved"
	LogFallback    = "fallback"
)
