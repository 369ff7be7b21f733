package audio

import (
	"sync"

	"go.uber.org/zap"
)

// Bell modes
const (
	ModeTerminal = "terminal"
	ModeTone     = "tone"
	ModeNone     = "none"
)

// BellService selects the bell implementation at Init.
// Tone mode degrades to the terminal bell when no audio device is available.
type BellService struct {
	mode     string
	terminal Ringer
	logger   *zap.Logger

	mu     sync.RWMutex
	active Ringer
	tone   *ToneBell
}

// NewService creates a bell service; terminal rings the terminal's own bell
func NewService(mode string, terminal Ringer, logger *zap.Logger) *BellService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if terminal == nil {
		terminal = Silent
	}
	return &BellService{
		mode:     mode,
		terminal: terminal,
		logger:   logger.Named("bell"),
		active:   terminal,
	}
}

// Name implements Service
func (s *BellService) Name() string {
	return "bell"
}

// Dependencies implements Service
func (s *BellService) Dependencies() []string {
	return nil
}

// Init implements Service; never fails
func (s *BellService) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeNone:
		s.active = Silent
	case ModeTone:
		tone, err := NewToneBell()
		if err != nil {
			s.logger.Info("no audio device, using terminal bell", zap.Error(err))
			s.active = s.terminal
			return nil
		}
		s.tone = tone
		s.active = tone
	default:
		s.active = s.terminal
	}
	return nil
}

// Start implements Service
func (s *BellService) Start() error {
	return nil
}

// Stop implements Service; later rings use the terminal bell
func (s *BellService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tone != nil {
		s.tone.Close()
		s.tone = nil
	}
	if s.active != Silent {
		s.active = s.terminal
	}
	return nil
}

// Ring sounds the active bell
func (s *BellService) Ring() {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	active.Ring()
}
