package status

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMetricMap_GetReturnsSameCell verifies repeated Get calls share one cell
func TestMetricMap_GetReturnsSameCell(t *testing.T) {
	r := NewRegistry()
	a := r.Floats.Get(FreeMem)
	b := r.Floats.Get(FreeMem)
	assert.Same(t, a, b)

	a.Set(12.5)
	assert.Equal(t, 12.5, b.Get())
	assert.True(t, r.Floats.Has(FreeMem))
	assert.False(t, r.Floats.Has(ArcMax))
}

// TestMetricMap_ConcurrentGet verifies racing first use allocates once
func TestMetricMap_ConcurrentGet(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get("x").Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 32.0, m.Get("x").Get())
}

// TestMetricMap_RangeSorted verifies Range visits keys in order
func TestMetricMap_RangeSorted(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(Samples).Store(3)
	r.Ints.Get(Lines).Store(1)
	r.Ints.Get(SampleErrors).Store(2)

	var keys []string
	r.Ints.Range(func(k string, _ *atomic.Int64) { keys = append(keys, k) })
	assert.Equal(t, []string{Lines, SampleErrors, Samples}, keys)
	assert.Equal(t, 3, r.TotalCount())
}

// TestAtomicString_Truncates verifies the length bound
func TestAtomicString_Truncates(t *testing.T) {
	var s AtomicString
	assert.Equal(t, "", s.Load())

	s.Store(strings.Repeat("x", MaxStringLen+10))
	assert.Len(t, s.Load(), MaxStringLen)

	s.Store("short")
	assert.Equal(t, "short", s.Load())
}
