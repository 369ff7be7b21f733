// Package audio rings the operator bell, as a speaker tone when an audio device is available.
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Ringer makes one bell sound
type Ringer interface {
	Ring()
}

// RingerFunc adapts a function to Ringer
type RingerFunc func()

func (f RingerFunc) Ring() { f() }

type silent struct{}

func (silent) Ring() {}

// Silent never makes a sound
var Silent Ringer = silent{}

// ToneBell plays a short sine tone on the speaker.
// Rings closer together than the tone length are merged into one.
type ToneBell struct {
	rate beep.SampleRate
	play func(beep.Streamer)

	mu       sync.Mutex
	lastRing time.Time

	rings atomic.Int64
}

// NewToneBell opens the speaker; fails when no audio device is available
func NewToneBell() (*ToneBell, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return newToneBell(SampleRate, func(s beep.Streamer) { speaker.Play(s) }), nil
}

func newToneBell(rate beep.SampleRate, play func(beep.Streamer)) *ToneBell {
	return &ToneBell{rate: rate, play: play}
}

// Ring queues a tone without blocking
func (b *ToneBell) Ring() {
	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.lastRing) < ToneDuration {
		b.mu.Unlock()
		return
	}
	b.lastRing = now
	b.mu.Unlock()

	tone, err := NewTone(b.rate)
	if err != nil {
		return
	}
	b.rings.Add(1)
	b.play(tone)
}

// Rings returns the number of tones played
func (b *ToneBell) Rings() int64 {
	return b.rings.Load()
}

// Close releases the speaker
func (b *ToneBell) Close() {
	speaker.Clear()
	speaker.Close()
}
