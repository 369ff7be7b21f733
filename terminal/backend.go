package terminal

import "errors"

var (
	// ErrNotTerminal is returned by Init when the output descriptor is not a tty
	ErrNotTerminal = errors.New("output is not a terminal")

	// ErrInterrupted reports a read interrupted by a signal; the caller retries
	ErrInterrupted = errors.New("read interrupted")
)

// Backend abstracts platform-specific terminal operations.
// The unix implementation drives the process tty; tests substitute in-memory backends.
type Backend interface {
	// Lifecycle
	// Init captures the current attributes and enters raw mode
	Init() error
	// Fini restores the attributes captured by Init
	Fini() error

	// Capabilities
	Size() (width, height int, err error)

	// I/O
	// Write writes raw bytes to the terminal output and flushes.
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// Returns (0, nil) only when stopCh was closed, io.EOF when input ended,
	// ErrInterrupted when the underlying read was interrupted.
	Read(p []byte, stopCh <-chan struct{}) (int, error)
}
