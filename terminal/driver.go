package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Driver owns the terminal output: raw-mode lifecycle and serialized emission.
// Every Emit is one complete visual unit; concurrent callers never interleave bytes.
type Driver struct {
	backend Backend

	mu       sync.Mutex
	started  bool
	restored bool
	width    int
	height   int
}

// NewDriver creates a driver over the given backend
func NewDriver(b Backend) *Driver {
	return &Driver{backend: b}
}

// Start captures terminal attributes and enters raw mode
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	// Window size must be readable before touching the mode
	w, h, err := d.backend.Size()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	d.width, d.height = w, h

	if err := d.backend.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}

	d.started = true
	return nil
}

// Emit writes p atomically with respect to other emitters
func (d *Driver) Emit(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backend.Write(p)
}

// EmitString is Emit for string payloads
func (d *Driver) EmitString(s string) error {
	return d.Emit([]byte(s))
}

// Cleanup emits a final line break and restores the original attributes.
// Only the first call after Start restores; later calls are no-ops.
func (d *Driver) Cleanup() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.restored {
		return nil
	}
	d.restored = true

	d.backend.Write(crlf)
	return d.backend.Fini()
}

// Restored reports whether Cleanup has run
func (d *Driver) Restored() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.restored
}

// Size returns the dimensions captured at Start
func (d *Driver) Size() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Cleanup cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(crlf)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	// This is best-effort; ignore errors in crash context
	resetTerminalMode()
}
