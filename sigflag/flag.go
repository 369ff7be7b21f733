// Package sigflag turns asynchronous process signals into a polled flag.
// The flag is only ever set by signal delivery and never reset; no terminal
// I/O happens in the delivery path.
package sigflag

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Flag records whether any of its signals was delivered
type Flag struct {
	delivered atomic.Bool
	sigCh     chan os.Signal
	stopCh    chan struct{}
	doneCh    chan struct{}
	once      sync.Once
}

// Notify registers for sigs (SIGTERM when none given) and returns the flag
func Notify(sigs ...os.Signal) *Flag {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGTERM}
	}

	f := &Flag{
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	signal.Notify(f.sigCh, sigs...)
	go f.watch()
	return f
}

func (f *Flag) watch() {
	defer close(f.doneCh)
	for {
		select {
		case <-f.stopCh:
			return
		case <-f.sigCh:
			f.delivered.Store(true)
		}
	}
}

// Delivered reports whether a registered signal has arrived
func (f *Flag) Delivered() bool {
	return f.delivered.Load()
}

// Stop unregisters the signals; the flag keeps its value
func (f *Flag) Stop() {
	f.once.Do(func() {
		signal.Stop(f.sigCh)
		close(f.stopCh)
		<-f.doneCh
	})
}
