// Package status holds the latest sampled values and process counters.
// Writers cache metric pointers once; reads and writes after that are lock-free.
package status

import "sync/atomic"

// Well-known keys
const (
	// Floats, MiB
	ArcTarget   = "arc.c"
	ArcMin      = "arc.c_min"
	ArcMax      = "arc.c_max"
	FreeMem     = "mem.free"
	AvailRmem   = "mem.availrmem"
	ArenaSize   = "stress.arena"
	SampleDelay = "sampler.delay_ms"

	// Ints
	Samples      = "sampler.samples"
	SampleErrors = "sampler.errors"
	Sluggish     = "sampler.sluggish"
	Lines        = "editor.lines"

	// Bools
	Busy = "console.busy"

	// Strings
	LastSample = "sampler.last"
	SessionID  = "session.id"
)

// Registry groups metric maps by value type
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of registered metrics of every type
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}
