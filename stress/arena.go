// Package stress holds the memory workloads driven by console commands.
// Every loop polls an Interrupter at a fixed cadence and aborts when it fires.
package stress

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// CheckInterval is the number of work units between interrupt checks
const CheckInterval = 10000

const megabyte = 1024 * 1024

// MaxMegabytes caps a single Grow
const MaxMegabytes = 1 << 20

// ErrInterrupted is returned when the operator aborted the workload
var ErrInterrupted = errors.New("interrupted")

// Interrupter reports and consumes a pending interrupt
type Interrupter interface {
	TakeCtrlC() bool
}

// Result describes a completed workload
type Result struct {
	Bytes   int64
	Elapsed time.Duration
}

// Megabytes returns the whole megabytes processed
func (r Result) Megabytes() int64 {
	return r.Bytes / megabyte
}

// Arena owns the buffers created by Grow; not safe for concurrent use
type Arena struct {
	allocs [][]byte
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// Grow allocates and fills a new buffer of megs megabytes.
// An interrupted grow keeps nothing.
func (a *Arena) Grow(megs uint64, intr Interrupter) (Result, error) {
	if megs > MaxMegabytes || megs > uint64(math.MaxInt/megabyte) {
		return Result{}, fmt.Errorf("size %d megabytes too large", megs)
	}

	start := time.Now()
	size := int(megs) * megabyte
	buf, err := allocate(size)
	if err != nil {
		return Result{}, err
	}

	var c uint64
	for len(buf) < size {
		buf = append(buf, 'A')

		c++
		if c%CheckInterval == 0 && intr.TakeCtrlC() {
			return Result{}, ErrInterrupted
		}
	}
	a.allocs = append(a.allocs, buf)

	return Result{Bytes: int64(size), Elapsed: time.Since(start)}, nil
}

// allocate turns a refused slice allocation into an error
func allocate(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("allocating %d bytes: %v", size, r)
		}
	}()
	return make([]byte, 0, size), nil
}

// Touch increments every byte of every buffer
func (a *Arena) Touch(intr Interrupter) (Result, error) {
	start := time.Now()
	var size int64
	var c uint64

	for _, buf := range a.allocs {
		for i := range buf {
			buf[i]++
			size++

			c++
			if c%CheckInterval == 0 && intr.TakeCtrlC() {
				return Result{Bytes: size, Elapsed: time.Since(start)}, ErrInterrupted
			}
		}
	}

	return Result{Bytes: size, Elapsed: time.Since(start)}, nil
}

// Free drops all buffers and returns how many bytes were held
func (a *Arena) Free() int64 {
	held := a.Size()
	a.allocs = nil
	return held
}

// Size returns the bytes currently held
func (a *Arena) Size() int64 {
	var n int64
	for _, buf := range a.allocs {
		n += int64(len(buf))
	}
	return n
}

// Buffers returns the number of buffers held
func (a *Arena) Buffers() int {
	return len(a.allocs)
}
