package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Bell tone shape
const (
	ToneFrequency = 880.0 // A5
	ToneDuration  = 50 * time.Millisecond
	ToneAttack    = 2 * time.Millisecond
	ToneRelease   = 30 * time.Millisecond
	ToneVolume    = 0.5
)

// SampleRate of the bell tone and the speaker
const SampleRate = beep.SampleRate(44100)

// envelope ramps a stream up over attack and down over release to avoid clicks
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, false
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.releaseSamples > 0 && e.position >= releaseStart {
			vol = math.Max(0, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s linearly; zero or less is silent since log2(0) is -Inf
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// NewTone builds one bell tone at rate
func NewTone(rate beep.SampleRate) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, ToneFrequency)
	if err != nil {
		return nil, err
	}
	shaped := newEnvelope(beep.Take(rate.N(ToneDuration), sine), ToneDuration, ToneAttack, ToneRelease, rate)
	return withVolume(shaped, ToneVolume), nil
}
