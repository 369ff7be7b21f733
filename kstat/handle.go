package kstat

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// Options configures where counters are read from
type Options struct {
	// ProcRoot is the procfs mount point
	ProcRoot string
	// SysRoot is the sysfs mount point, needed for block devices
	SysRoot string
	// PageSize converts byte counts to pages; zero uses the system page size
	PageSize uint64
}

// DefaultOptions reads the live system
func DefaultOptions() Options {
	return Options{
		ProcRoot: "/proc",
		SysRoot:  "/sys",
	}
}

// provider contributes kstats to a snapshot
type provider func(opts Options) ([]*Kstat, error)

// Handle is an open statistics source
type Handle struct {
	opts Options

	gen atomic.Uint64

	mu    sync.Mutex
	chain []*Kstat
}

// Open validates the source and takes a first snapshot
func Open(opts Options) (*Handle, error) {
	if opts.ProcRoot == "" {
		opts.ProcRoot = DefaultOptions().ProcRoot
	}
	if opts.SysRoot == "" {
		opts.SysRoot = DefaultOptions().SysRoot
	}
	if opts.PageSize == 0 {
		opts.PageSize = uint64(os.Getpagesize())
	}

	if fi, err := os.Stat(opts.ProcRoot); err != nil {
		return nil, fmt.Errorf("open kstat: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("open kstat: %s is not a directory", opts.ProcRoot)
	}

	h := &Handle{opts: opts}
	if err := h.Update(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handle) generation() uint64 {
	return h.gen.Load()
}

// Update refreshes the snapshot; every previously returned *Kstat becomes stale.
// Providers that fail are skipped; an error is returned only if nothing was read.
func (h *Handle) Update() error {
	var chain []*Kstat
	var errs []error

	for _, p := range providers() {
		ks, err := p(h.opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		chain = append(chain, ks...)
	}

	if len(chain) == 0 && len(errs) > 0 {
		return fmt.Errorf("kstat update: %w", errors.Join(errs...))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	gen := h.gen.Add(1)
	for _, k := range chain {
		k.gen = gen
		k.h = h
	}
	h.chain = chain
	return nil
}

// Lookup finds a kstat by module and name; instance < 0 matches any instance
func (h *Handle) Lookup(module string, instance int, name string) (*Kstat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, k := range h.chain {
		if k.Module != module || k.Name != name {
			continue
		}
		if instance >= 0 && k.Instance != instance {
			continue
		}
		return k, nil
	}
	return nil, ErrNotFound
}

// Walk calls fn for every kstat in the snapshot until fn returns false
func (h *Handle) Walk(fn func(*Kstat) bool) {
	h.mu.Lock()
	chain := h.chain
	h.mu.Unlock()

	for _, k := range chain {
		if !fn(k) {
			return
		}
	}
}

// Uint64 looks up one statistic in the current snapshot
func (h *Handle) Uint64(module string, instance int, name, stat string) (uint64, error) {
	k, err := h.Lookup(module, instance, name)
	if err != nil {
		return 0, err
	}
	v, ok := k.Uint64(stat)
	if !ok {
		return 0, fmt.Errorf("%s:%d:%s:%s: %w", module, instance, name, stat, ErrNotFound)
	}
	return v, nil
}

// Close releases the handle
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chain = nil
	h.gen.Add(1)
	return nil
}

// PageSize is the byte size of one page as used by page-valued statistics
func (h *Handle) PageSize() uint64 {
	return h.opts.PageSize
}
