//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixBackend struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State
}

// NewBackend returns the backend for the process stdin/stdout
func NewBackend() Backend {
	return NewFileBackend(os.Stdin, os.Stdout)
}

// NewFileBackend returns a unix backend over arbitrary tty files
func NewFileBackend(in, out *os.File) Backend {
	return &unixBackend{
		in:    in,
		out:   out,
		inFd:  int(in.Fd()),
		outFd: int(out.Fd()),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.outFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(b.outFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	b.oldTerm = old

	// Discard anything typed before raw mode took effect
	if err := flushQueues(b.outFd); err != nil {
		term.Restore(b.outFd, old)
		b.oldTerm = nil
		return fmt.Errorf("flush tty queues: %w", err)
	}
	return nil
}

func (b *unixBackend) Fini() error {
	if b.oldTerm == nil {
		return nil
	}
	err := term.Restore(b.outFd, b.oldTerm)
	b.oldTerm = nil
	return err
}

func (b *unixBackend) Size() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(b.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

func (b *unixBackend) Write(p []byte) error {
	for len(p) > 0 {
		n, err := b.out.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Read polls with a timeout so a closed stopCh is noticed while no input arrives
func (b *unixBackend) Read(p []byte, stopCh <-chan struct{}) (int, error) {
	for {
		select {
		case <-stopCh:
			return 0, nil
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(b.inFd), Events: unix.POLLIN},
		}

		// 100ms timeout
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				return 0, ErrInterrupted
			}
			return 0, err
		}

		if n == 0 {
			continue // Timeout
		}

		rn, err := unix.Read(b.inFd, p)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				return 0, ErrInterrupted
			}
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			return 0, err
		}

		if rn == 0 {
			return 0, io.EOF
		}
		return rn, nil
	}
}
