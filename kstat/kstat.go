// Package kstat reads named kernel counters by module, instance and name.
//
// A Handle holds one snapshot. Update replaces it and invalidates every *Kstat
// obtained before; accessors on an invalidated Kstat report not-found.
package kstat

import (
	"errors"
	"math"
)

var (
	// ErrNotFound is returned when no kstat matches a lookup
	ErrNotFound = errors.New("kstat not found")

	// ErrStale is returned when a kstat from an older snapshot is used
	ErrStale = errors.New("kstat from a previous snapshot")
)

// Type is the data type of a named value
type Type uint8

const (
	TypeChar   Type = 0
	TypeInt32  Type = 1
	TypeUint32 Type = 2
	TypeInt64  Type = 3
	TypeUint64 Type = 4
)

// Kind distinguishes named-value kstats from I/O kstats
type Kind uint8

const (
	KindNamed Kind = 1
	KindIO    Kind = 3
)

// Named is one statistic of a named kstat
type Named struct {
	Name  string
	Type  Type
	Str   string // TypeChar
	Value uint64 // raw bits; signed types are two's complement
}

// IO is an aggregate I/O counters record
type IO struct {
	NRead       uint64
	NWritten    uint64
	Reads       uint32
	Writes      uint32
	WTime       int64
	WLenTime    int64
	WLastUpdate int64
	RTime       int64
	RLenTime    int64
	RLastUpdate int64
	WCnt        uint32
	RCnt        uint32
}

// Kstat is one entry of a snapshot
type Kstat struct {
	Module   string
	Instance int
	Name     string
	Class    string
	Kind     Kind

	named []Named
	io    IO
	gen   uint64
	h     *Handle
}

// Valid reports whether k belongs to the handle's current snapshot
func (k *Kstat) Valid() bool {
	return k.h != nil && k.h.generation() == k.gen
}

// Data returns a copy of the named values
func (k *Kstat) Data() ([]Named, error) {
	if !k.Valid() {
		return nil, ErrStale
	}
	return append([]Named(nil), k.named...), nil
}

func (k *Kstat) find(stat string) (Named, bool) {
	if k.Kind != KindNamed || !k.Valid() {
		return Named{}, false
	}
	for _, n := range k.named {
		if n.Name == stat {
			return n, true
		}
	}
	return Named{}, false
}

// Int32 interprets stat as a signed 32-bit value
func (k *Kstat) Int32(stat string) (int32, bool) {
	n, ok := k.find(stat)
	if !ok || n.Type != TypeInt32 {
		return 0, false
	}
	return int32(uint32(n.Value)), true
}

// Uint32 interprets stat as an unsigned 32-bit value
func (k *Kstat) Uint32(stat string) (uint32, bool) {
	n, ok := k.find(stat)
	if !ok || n.Type != TypeUint32 {
		return 0, false
	}
	return uint32(n.Value), true
}

// Int64 interprets stat as a signed value; 32-bit values widen
func (k *Kstat) Int64(stat string) (int64, bool) {
	n, ok := k.find(stat)
	if !ok {
		return 0, false
	}
	switch n.Type {
	case TypeInt32:
		return int64(int32(uint32(n.Value))), true
	case TypeUint32:
		return int64(uint32(n.Value)), true
	case TypeInt64:
		return int64(n.Value), true
	case TypeUint64:
		if n.Value > math.MaxInt64 {
			return 0, false
		}
		return int64(n.Value), true
	}
	return 0, false
}

// Uint64 interprets stat as an unsigned value; 32-bit values widen
func (k *Kstat) Uint64(stat string) (uint64, bool) {
	n, ok := k.find(stat)
	if !ok {
		return 0, false
	}
	switch n.Type {
	case TypeUint32, TypeUint64:
		return n.Value, true
	case TypeInt32:
		if v := int32(uint32(n.Value)); v >= 0 {
			return uint64(v), true
		}
	case TypeInt64:
		if v := int64(n.Value); v >= 0 {
			return uint64(v), true
		}
	}
	return 0, false
}

// IO returns the I/O record of an I/O kstat
func (k *Kstat) IO() (IO, bool) {
	if k.Kind != KindIO || !k.Valid() {
		return IO{}, false
	}
	return k.io, true
}
