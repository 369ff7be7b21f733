package editor

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Output is the serialized terminal emitter; *terminal.Driver implements it
type Output interface {
	EmitString(s string) error
	Cleanup() error
}

// Bell is rung when an unrecognized byte arrives
type Bell interface {
	Ring()
}

// TermSignal reports whether process termination was requested
type TermSignal interface {
	Delivered() bool
}

// Recorder observes editor activity
type Recorder interface {
	LogEmitted(path string)
	LineSubmitted()
}

// Config holds Session settings
type Config struct {
	// Prompt is drawn at the start of every edit
	Prompt string
	// MaxLine caps the edit buffer length
	MaxLine int
	// PollInterval bounds each wait so signal and eof state is rechecked
	PollInterval time.Duration

	// Fallback receives log lines after the terminal was restored
	Fallback io.Writer
	// Bell rings on unrecognized input; nil emits BEL through Output
	Bell Bell
	// Signal is polled at every wake-up; nil never fires
	Signal TermSignal
	// Recorder is notified of emitted logs and submitted lines; may be nil
	Recorder Recorder
	// Logger receives diagnostics; nil disables them
	Logger *zap.Logger
}

// DefaultConfig returns the console defaults
func DefaultConfig() Config {
	return Config{
		Prompt:       "fillmem> ",
		MaxLine:      60,
		PollInterval: 250 * time.Millisecond,
		Fallback:     os.Stdout,
	}
}
