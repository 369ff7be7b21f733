// Package sampler periodically reads memory statistics and logs one line per tick.
package sampler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/fillmem/kstat"
	"github.com/lixenwraith/fillmem/status"
)

const mib = 1024 * 1024

// TimeFormat stamps every sample, always in UTC
const TimeFormat = "15:04:05.000Z"

// Source is a refreshable statistics snapshot
type Source interface {
	Update() error
	Uint64(module string, instance int, name, stat string) (uint64, error)
	PageSize() uint64
}

// Logger receives formatted sample lines
type Logger interface {
	Log(msg string) error
}

// Sample is one reading, in bytes
type Sample struct {
	Time      time.Time
	ArcC      uint64
	ArcMin    uint64
	ArcMax    uint64
	Freemem   uint64
	Availrmem uint64
}

// String renders s as a log line with sizes in MiB
func (s Sample) String() string {
	var b strings.Builder
	b.WriteString(s.Time.UTC().Format(TimeFormat))
	for _, f := range []struct {
		name string
		v    uint64
	}{
		{"c", s.ArcC},
		{"min", s.ArcMin},
		{"max", s.ArcMax},
		{"free", s.Freemem},
		{"avrm", s.Availrmem},
	} {
		fmt.Fprintf(&b, " %s %7.1f", f.name, float64(f.v)/mib)
	}
	return b.String()
}

// Config tunes the sampler
type Config struct {
	Interval       time.Duration
	SluggishFactor int
	Status         *status.Registry
	Logger         *zap.Logger
	// OnPanic runs if the sampling goroutine panics, before the panic is re-raised
	OnPanic func(r any)
}

// Sampler logs one sample per interval until stopped or the log refuses output
type Sampler struct {
	source Source
	out    Logger
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	// status cells, cached at construction
	arcC, arcMin, arcMax, free, avrm, delay *status.AtomicFloat
	last                                    *status.AtomicString

	mu       sync.Mutex
	latest   Sample
	lastTick time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a stopped sampler
func New(source Source, out Logger, cfg Config) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.SluggishFactor <= 0 {
		cfg.SluggishFactor = 3
	}
	if cfg.Status == nil {
		cfg.Status = status.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	st := cfg.Status
	return &Sampler{
		source: source,
		out:    out,
		cfg:    cfg,
		logger: cfg.Logger.Named("sampler"),
		now:    time.Now,
		arcC:   st.Floats.Get(status.ArcTarget),
		arcMin: st.Floats.Get(status.ArcMin),
		arcMax: st.Floats.Get(status.ArcMax),
		free:   st.Floats.Get(status.FreeMem),
		avrm:   st.Floats.Get(status.AvailRmem),
		delay:  st.Floats.Get(status.SampleDelay),
		last:   st.Strings.Get(status.LastSample),
	}
}

// Start launches the sampling goroutine; a running sampler is left alone
func (s *Sampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.lastTick = s.now()
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts sampling and waits for the goroutine
func (s *Sampler) Stop() {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// Latest returns the most recent successful sample
func (s *Sampler) Latest() (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, !s.latest.Time.IsZero()
}

func (s *Sampler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer func() {
		if r := recover(); r != nil {
			if s.cfg.OnPanic != nil {
				s.cfg.OnPanic(r)
			}
			panic(r)
		}
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				s.logger.Info("log closed, sampler exiting", zap.Error(err))
				return
			}
		}
	}
}

// Tick takes one sample and logs it.
// A failed refresh skips the sample; an error is returned only when the log refuses output.
func (s *Sampler) Tick() error {
	now := s.now()

	s.mu.Lock()
	elapsed := now.Sub(s.lastTick)
	s.lastTick = now
	s.mu.Unlock()

	s.delay.Set(float64(elapsed.Milliseconds()))
	limit := time.Duration(s.cfg.SluggishFactor) * s.cfg.Interval
	if elapsed > limit {
		s.cfg.Status.Ints.Get(status.Sluggish).Add(1)
		if err := s.out.Log(fmt.Sprintf("%d msec since last stats; sluggish?", elapsed.Milliseconds())); err != nil {
			return err
		}
	}

	if err := s.source.Update(); err != nil {
		s.cfg.Status.Ints.Get(status.SampleErrors).Add(1)
		s.logger.Debug("statistics refresh failed", zap.Error(err))
		return nil
	}

	smp := s.read(now)
	s.publish(smp)
	return s.out.Log(smp.String())
}

// read collects the values; missing ones read as zero
func (s *Sampler) read(now time.Time) Sample {
	get := func(module, name, stat string) uint64 {
		v, err := s.source.Uint64(module, 0, name, stat)
		if err != nil {
			return 0
		}
		return v
	}

	page := s.source.PageSize()
	return Sample{
		Time:      now,
		ArcC:      get(kstat.ModuleZFS, kstat.NameArcstats, kstat.StatC),
		ArcMin:    get(kstat.ModuleZFS, kstat.NameArcstats, kstat.StatCMin),
		ArcMax:    get(kstat.ModuleZFS, kstat.NameArcstats, kstat.StatCMax),
		Freemem:   get(kstat.ModuleUnix, kstat.NameSystemPages, kstat.StatFreemem) * page,
		Availrmem: get(kstat.ModuleUnix, kstat.NameSystemPages, kstat.StatAvailrmem) * page,
	}
}

func (s *Sampler) publish(smp Sample) {
	s.arcC.Set(float64(smp.ArcC) / mib)
	s.arcMin.Set(float64(smp.ArcMin) / mib)
	s.arcMax.Set(float64(smp.ArcMax) / mib)
	s.free.Set(float64(smp.Freemem) / mib)
	s.avrm.Set(float64(smp.Availrmem) / mib)
	s.last.Store(smp.String())
	s.cfg.Status.Ints.Get(status.Samples).Add(1)

	s.mu.Lock()
	s.latest = smp
	s.mu.Unlock()
}
