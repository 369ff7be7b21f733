package status

import "sync/atomic"

// MaxStringLen bounds stored strings; a full sample line fits
const MaxStringLen = 128

// AtomicString holds a bounded string; the zero value is ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncating to MaxStringLen bytes
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	s.ptr.Store(&val)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
