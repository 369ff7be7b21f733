package editor

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/fillmem/terminal"
)

// Input bytes with editing meaning
const (
	byteCtrlC     = 0x03
	byteCtrlD     = 0x04
	byteCR        = 0x0d
	byteCtrlU     = 0x15
	byteBackspace = 0x7f
)

// Session is the line editor shared by the input reader, the line consumer and log producers
type Session struct {
	out      Output
	prompt   string
	maxLine  int
	poll     time.Duration
	fallback io.Writer
	bell     Bell
	signal   TermSignal
	recorder Recorder
	logger   *zap.Logger

	mu sync.Mutex
	// wake is closed and replaced on every change; waiters select on it with a timeout
	wake chan struct{}

	state       State
	buffer      []byte
	input       []byte
	pending     string
	hasPending  bool
	eof         bool
	interrupted bool
	ctrlc       bool
}

// New creates a Session writing to out
func New(out Output, cfg Config) *Session {
	def := DefaultConfig()
	if cfg.MaxLine <= 0 {
		cfg.MaxLine = def.MaxLine
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Fallback == nil {
		cfg.Fallback = def.Fallback
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Session{
		out:      out,
		prompt:   cfg.Prompt,
		maxLine:  cfg.MaxLine,
		poll:     cfg.PollInterval,
		fallback: cfg.Fallback,
		bell:     cfg.Bell,
		signal:   cfg.Signal,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		wake:     make(chan struct{}),
		buffer:   make([]byte, 0, cfg.MaxLine),
	}
	if s.bell == nil {
		s.bell = emitBell{out: out}
	}
	return s
}

// State returns the current edit state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Log prints msg on its own line.
// At rest it is emitted immediately; while a Line call is active it is handed to
// that call through a one-slot mailbox, waiting for the slot to drain first.
func (s *Session) Log(msg string) error {
	s.mu.Lock()
	for {
		switch s.state {
		case StateRest:
			err := s.out.EmitString(msg + terminal.LineBreak)
			s.mu.Unlock()
			s.record(LogDirect)
			return err

		case StateCleanedUp:
			s.mu.Unlock()
			s.record(LogFallback)
			_, err := fmt.Fprintln(s.fallback, msg)
			return err

		case StateEditing:
			if s.hasPending {
				s.waitLocked(0)
				continue
			}
			s.pending = msg
			s.hasPending = true
			s.broadcastLocked()
			s.mu.Unlock()
			return nil
		}
	}
}

// TakeCtrlC consumes a pending interrupt request, reporting whether there was one.
// Long-running commands poll it to abort early.
func (s *Session) TakeCtrlC() bool {
	s.mu.Lock()
	if !s.ctrlc {
		s.mu.Unlock()
		return false
	}
	s.ctrlc = false
	s.mu.Unlock()

	s.Log("^C")
	return true
}

// Line reads one line from the operator.
// Returns io.EOF when the session ends (ctrl-c, ctrl-d, end of input, termination
// signal); the terminal is restored before it returns.
func (s *Session) Line() (string, error) {
	s.mu.Lock()

	switch s.state {
	case StateEditing:
		s.mu.Unlock()
		return "", ErrBusy
	case StateCleanedUp:
		s.mu.Unlock()
		return "", ErrCleanedUp
	}

	s.buffer = s.buffer[:0]
	s.state = StateEditing
	s.broadcastLocked()

	if err := s.out.EmitString(s.prompt); err != nil {
		return "", s.abortLocked(err)
	}

	for {
		if s.signal != nil && s.signal.Delivered() {
			s.mu.Unlock()
			return s.end("signal")
		}

		if s.ctrlc {
			s.ctrlc = false
			s.mu.Unlock()
			return s.end("ctrl-c")
		}

		if s.interrupted {
			s.interrupted = false
			continue
		}

		if s.eof {
			s.mu.Unlock()
			return s.end("eof")
		}

		if s.hasPending {
			msg := s.pending
			s.pending, s.hasPending = "", false
			s.broadcastLocked()
			if err := s.logWhileEditingLocked(msg); err != nil {
				return "", s.abortLocked(err)
			}
			s.record(LogInterleaved)
			continue
		}

		if len(s.input) == 0 {
			s.waitLocked(s.poll)
			continue
		}

		b := s.input[0]
		s.input = s.input[1:]

		switch {
		case b == ' ' || (b > ' ' && b < byteBackspace):
			if len(s.buffer) < s.maxLine {
				s.buffer = append(s.buffer, b)
				if err := s.out.EmitString(string(b)); err != nil {
					return "", s.abortLocked(err)
				}
			}

		case b == byteCtrlC:
			s.mu.Unlock()
			return s.end("ctrl-c")

		case b == byteCtrlD:
			s.mu.Unlock()
			return s.end("ctrl-d")

		case b == byteCR:
			return s.submitLocked()

		case b == byteBackspace:
			if len(s.buffer) > 0 {
				s.buffer = s.buffer[:len(s.buffer)-1]
				if err := s.out.EmitString(terminal.EraseLeft); err != nil {
					return "", s.abortLocked(err)
				}
			}

		case b == byteCtrlU:
			s.buffer = s.buffer[:0]
			if err := s.out.EmitString(s.promptLineLocked()); err != nil {
				return "", s.abortLocked(err)
			}

		default:
			msg := "unrecognized byte " + terminal.KeyName(b)
			if err := s.logWhileEditingLocked(msg); err != nil {
				return "", s.abortLocked(err)
			}
			s.bell.Ring()
		}
	}
}

// Cleanup restores the terminal once; later calls are no-ops.
// A log line still waiting in the mailbox goes to the fallback writer.
func (s *Session) Cleanup() error {
	s.mu.Lock()
	if s.state == StateCleanedUp {
		s.mu.Unlock()
		return nil
	}

	err := s.out.Cleanup()
	s.state = StateCleanedUp

	// Printed before waiters can observe the new state, keeping mailbox order
	if s.hasPending {
		fmt.Fprintln(s.fallback, s.pending)
		s.pending, s.hasPending = "", false
		s.record(LogFallback)
	}
	s.broadcastLocked()
	s.mu.Unlock()

	s.logger.Debug("terminal cleaned up", zap.Error(err))
	return err
}

// HandleByte implements terminal.InputHandler
func (s *Session) HandleByte(b byte) {
	s.mu.Lock()
	s.input = append(s.input, b)
	s.broadcastLocked()
	s.mu.Unlock()
}

// HandleCtrlC implements terminal.InputHandler.
// Bytes queued before the interrupt are dropped, never replayed.
func (s *Session) HandleCtrlC() {
	s.mu.Lock()
	s.ctrlc = true
	s.input = s.input[:0]
	s.broadcastLocked()
	s.mu.Unlock()
}

// HandleRetry implements terminal.InputHandler
func (s *Session) HandleRetry() {
	s.mu.Lock()
	s.interrupted = true
	s.broadcastLocked()
	s.mu.Unlock()
}

// HandleEOF implements terminal.InputHandler
func (s *Session) HandleEOF() {
	s.mu.Lock()
	s.eof = true
	s.broadcastLocked()
	s.mu.Unlock()
}

// submitLocked completes the active edit and returns the buffer
func (s *Session) submitLocked() (string, error) {
	line := string(s.buffer)
	s.buffer = s.buffer[:0]
	s.state = StateRest
	s.broadcastLocked()

	out := terminal.LineBreak
	if s.hasPending {
		out += s.pending + terminal.LineBreak
		s.pending, s.hasPending = "", false
		s.record(LogDirect)
	}
	err := s.out.EmitString(out)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.LineSubmitted()
	}
	s.logger.Debug("line submitted", zap.Int("length", len(line)))
	return line, err
}

// end tears the session down and reports end of stream; called without the lock
func (s *Session) end(reason string) (string, error) {
	s.logger.Debug("edit session ended", zap.String("reason", reason))
	s.Cleanup()
	return "", io.EOF
}

// abortLocked returns to rest after an output failure and unlocks
func (s *Session) abortLocked(err error) error {
	s.state = StateRest
	s.broadcastLocked()
	s.mu.Unlock()
	s.logger.Warn("terminal output failed", zap.Error(err))
	return fmt.Errorf("editor output: %w", err)
}

// logWhileEditingLocked prints msg above the prompt and redraws prompt and buffer
func (s *Session) logWhileEditingLocked(msg string) error {
	var b strings.Builder
	b.Grow(len(msg) + len(s.prompt) + len(s.buffer) + 16)
	b.WriteString(terminal.ClearLine)
	b.WriteString(msg)
	b.WriteString(terminal.LineBreak)
	b.WriteString(s.promptLineLocked())
	return s.out.EmitString(b.String())
}

// promptLineLocked renders a cleared line holding prompt and buffer
func (s *Session) promptLineLocked() string {
	return terminal.ClearLine + s.prompt + string(s.buffer)
}

// broadcastLocked wakes every waiter
func (s *Session) broadcastLocked() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// waitLocked releases the lock until the next broadcast or timeout (0 waits indefinitely)
func (s *Session) waitLocked(timeout time.Duration) {
	wake := s.wake
	s.mu.Unlock()

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		select {
		case <-wake:
		case <-timer.C:
		}
		timer.Stop()
	} else {
		<-wake
	}

	s.mu.Lock()
}

func (s *Session) record(path string) {
	if s.recorder != nil {
		s.recorder.LogEmitted(path)
	}
}

// emitBell rings the terminal bell through the output
type emitBell struct {
	out Output
}

func (b emitBell) Ring() {
	b.out.EmitString(terminal.Bell)
}
