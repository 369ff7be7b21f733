package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

// CtrlC is the interrupt character in raw mode
const CtrlC = 0x03

// InputHandler receives the byte stream of an InputReader.
// Calls arrive from the reader goroutine, one at a time.
type InputHandler interface {
	// HandleByte queues an ordinary input byte
	HandleByte(b byte)
	// HandleCtrlC drops queued input and raises the interrupt flag
	HandleCtrlC()
	// HandleRetry records an interrupted read; reading continues
	HandleRetry()
	// HandleEOF records the end of input; no further calls follow
	HandleEOF()
}

// InputReader performs single-byte reads and feeds them to an InputHandler
type InputReader struct {
	backend Backend
	handler InputHandler
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
	stopped bool
}

// NewInputReader creates a reader over backend input
func NewInputReader(backend Backend, handler InputHandler) *InputReader {
	return &InputReader{
		backend: backend,
		handler: handler,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins reading input in a goroutine
func (r *InputReader) Start() {
	r.mu.Lock()
	if r.running || r.stopped {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.readLoop()
}

// Stop signals the reader to stop
func (r *InputReader) Stop() {
	r.mu.Lock()
	if !r.running || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	// Wait with timeout - don't block forever if read is stuck
	select {
	case <-r.doneCh:
	case <-time.After(200 * time.Millisecond):
	}
}

// Done is closed when the read loop has exited
func (r *InputReader) Done() <-chan struct{} {
	return r.doneCh
}

// readLoop is the main input reading goroutine
func (r *InputReader) readLoop() {
	defer close(r.doneCh)

	defer func() {
		if rec := recover(); rec != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	var buf [1]byte
	for {
		n, err := r.backend.Read(buf[:], r.stopCh)
		switch {
		case errors.Is(err, ErrInterrupted):
			r.handler.HandleRetry()
			continue
		case errors.Is(err, io.EOF):
			r.handler.HandleEOF()
			return
		case err != nil:
			// Unexpected read errors end input the same way EOF does
			r.handler.HandleEOF()
			return
		case n == 0:
			// Stop requested
			return
		}

		if buf[0] == CtrlC {
			r.handler.HandleCtrlC()
			continue
		}
		r.handler.HandleByte(buf[0])
	}
}
