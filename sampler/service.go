package sampler

import (
	"fmt"

	"github.com/lixenwraith/fillmem/kstat"
)

// Service runs a Sampler over a kstat handle opened at Init
type Service struct {
	opts    kstat.Options
	out     Logger
	cfg     Config
	enabled bool

	handle  *kstat.Handle
	sampler *Sampler
}

// NewService creates the sampler service; a disabled service does nothing
func NewService(opts kstat.Options, out Logger, cfg Config, enabled bool) *Service {
	return &Service{opts: opts, out: out, cfg: cfg, enabled: enabled}
}

// Name implements Service
func (s *Service) Name() string {
	return "sampler"
}

// Dependencies implements Service; samples are logged through the terminal
func (s *Service) Dependencies() []string {
	return []string{"terminal"}
}

// Init implements Service
func (s *Service) Init(args ...any) error {
	if !s.enabled || s.sampler != nil {
		return nil
	}
	h, err := kstat.Open(s.opts)
	if err != nil {
		return fmt.Errorf("statistics source: %w", err)
	}
	s.handle = h
	s.sampler = New(h, s.out, s.cfg)
	return nil
}

// Start implements Service
func (s *Service) Start() error {
	if s.sampler != nil {
		s.sampler.Start()
	}
	return nil
}

// Stop implements Service
func (s *Service) Stop() error {
	if s.sampler == nil {
		return nil
	}
	s.sampler.Stop()
	s.sampler = nil
	return s.handle.Close()
}

// Sampler returns the running sampler, or nil when disabled
func (s *Service) Sampler() *Sampler {
	return s.sampler
}
