// Package gate serializes prompting against command execution.
// The dispatcher marks the gate busy while a command runs; the line-reading
// goroutine waits for idle before asking for the next line.
package gate

import "sync"

// Gate is a busy flag with waiters
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	busy   bool
	closed bool
}

// New creates an idle gate
func New() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// MarkBusy sets the flag and wakes waiters
func (g *Gate) MarkBusy() {
	g.mu.Lock()
	g.busy = true
	g.mu.Unlock()
	g.cond.Broadcast()
}

// MarkIdle clears the flag and wakes waiters
func (g *Gate) MarkIdle() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Busy reports the current flag
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// WaitIdle parks until the gate is idle.
// Returns false if the gate was closed instead.
func (g *Gate) WaitIdle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.busy && !g.closed {
		g.cond.Wait()
	}
	return !g.closed
}

// Close releases all current and future waiters
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.cond.Broadcast()
}
