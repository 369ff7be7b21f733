package terminal

import (
	"errors"
	"sync"
)

// TerminalService manages the driver and input reader lifecycle
type TerminalService struct {
	backend Backend
	driver  *Driver
	reader  *InputReader
	handler InputHandler
	mu      sync.Mutex
	running bool
}

// NewService creates a terminal service over backend
func NewService(backend Backend) *TerminalService {
	return &TerminalService{
		backend: backend,
		driver:  NewDriver(backend),
	}
}

// Name implements Service
func (s *TerminalService) Name() string {
	return "terminal"
}

// Dependencies implements Service
func (s *TerminalService) Dependencies() []string {
	return nil
}

// Attach sets the consumer of input bytes; must precede Start
func (s *TerminalService) Attach(h InputHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Init implements Service - enters raw mode
func (s *TerminalService) Init(args ...any) error {
	return s.driver.Start()
}

// Start implements Service - launches the input reader goroutine
func (s *TerminalService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.handler == nil {
		return errors.New("terminal: no input handler attached")
	}

	s.reader = NewInputReader(s.backend, s.handler)
	s.reader.Start()
	s.running = true
	return nil
}

// Stop implements Service - stops input and restores the terminal
func (s *TerminalService) Stop() error {
	s.mu.Lock()
	reader := s.reader
	s.running = false
	s.mu.Unlock()

	if reader != nil {
		reader.Stop()
	}
	return s.driver.Cleanup()
}

// Driver returns the output driver
func (s *TerminalService) Driver() *Driver {
	return s.driver
}
