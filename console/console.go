// Package console runs the operator command loop.
//
// A dedicated goroutine waits for the busy gate to open, reads one line and hands it
// to Run over a channel; Run executes the command and reopens the gate. Commands may
// run for a long time and poll the editor's interrupt flag to abort early.
package console

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/fillmem/gate"
	"github.com/lixenwraith/fillmem/status"
	"github.com/lixenwraith/fillmem/stress"
)

// EndMessage is logged when the operator ends the session
const EndMessage = " * end!"

// Editor is the line editor the console drives
type Editor interface {
	Line() (string, error)
	Log(msg string) error
	TakeCtrlC() bool
	Cleanup() error
}

// Recorder observes dispatched commands
type Recorder interface {
	CommandDone(verb, result string, elapsed time.Duration)
}

// Config wires optional collaborators
type Config struct {
	Status    *status.Registry
	Recorder  Recorder
	Logger    *zap.Logger
	SessionID string
	// OnPanic runs if the line-reading goroutine panics, before the panic is re-raised
	OnPanic func(r any)
}

// activity is one result of the line-reading goroutine
type activity struct {
	line string
	err  error
}

// Console dispatches operator commands
type Console struct {
	ed       Editor
	gate     *gate.Gate
	arena    *stress.Arena
	commands map[string]command
	cfg      Config
	logger   *zap.Logger

	busy  *atomic.Bool
	lines *atomic.Int64
	held  *status.AtomicFloat
}

// New creates a console over ed
func New(ed Editor, cfg Config) *Console {
	if cfg.Status == nil {
		cfg.Status = status.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Console{
		ed:     ed,
		gate:   gate.New(),
		arena:  stress.NewArena(),
		cfg:    cfg,
		logger: cfg.Logger.Named("console"),
		busy:   cfg.Status.Bools.Get(status.Busy),
		lines:  cfg.Status.Ints.Get(status.Lines),
		held:   cfg.Status.Floats.Get(status.ArenaSize),
	}
	c.commands = c.commandTable()
	return c
}

// Run reads and executes commands until the session ends.
// Returns nil when the operator ends the session and an error if the editor failed.
func (c *Console) Run() error {
	if c.cfg.SessionID != "" {
		if err := c.ed.Log(fmt.Sprintf("fillmem session %s; type help for commands", c.cfg.SessionID)); err != nil {
			c.ed.Cleanup()
			return fmt.Errorf("console output: %w", err)
		}
	}

	acts := make(chan activity)
	go c.readLines(acts)
	defer c.gate.Close()

	for act := range acts {
		if act.err != nil {
			if errors.Is(act.err, io.EOF) {
				c.logger.Debug("session ended")
				c.ed.Log(EndMessage)
				return c.ed.Cleanup()
			}
			c.ed.Cleanup()
			return fmt.Errorf("line editor: %w", act.err)
		}

		c.lines.Add(1)
		err := c.Dispatch(act.line)
		c.busy.Store(false)
		if err != nil {
			// Output is gone; the reader must not prompt again
			c.gate.Close()
			c.ed.Cleanup()
			return fmt.Errorf("console output: %w", err)
		}
		c.gate.MarkIdle()
	}
	return nil
}

// readLines is the line-reading goroutine; it exits after the first error
func (c *Console) readLines(acts chan<- activity) {
	defer close(acts)
	defer func() {
		if r := recover(); r != nil {
			if c.cfg.OnPanic != nil {
				c.cfg.OnPanic(r)
			}
			panic(r)
		}
	}()

	for {
		if !c.gate.WaitIdle() {
			return
		}

		line, err := c.ed.Line()
		if err != nil {
			acts <- activity{err: err}
			return
		}

		c.gate.MarkBusy()
		c.busy.Store(true)
		acts <- activity{line: line}
	}
}

// Arena exposes the buffers held by grow
func (c *Console) Arena() *stress.Arena {
	return c.arena
}
