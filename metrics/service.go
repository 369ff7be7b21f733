package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 2 * time.Second

// HTTPService serves /metrics while the program runs
type HTTPService struct {
	addr    string
	metrics *Metrics
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	done     chan struct{}
}

// NewService creates the endpoint service for addr
func NewService(addr string, m *Metrics, logger *zap.Logger) *HTTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPService{addr: addr, metrics: m, logger: logger.Named("metrics")}
}

// Name implements Service
func (s *HTTPService) Name() string {
	return "metrics"
}

// Dependencies implements Service
func (s *HTTPService) Dependencies() []string {
	return nil
}

// Init implements Service; binds the address so a bad one fails before raw mode
func (s *HTTPService) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{Registry: s.metrics.Registry}))
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return nil
}

// Start implements Service
func (s *HTTPService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil || s.done != nil {
		return nil
	}
	s.done = make(chan struct{})
	go func(srv *http.Server, ln net.Listener, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}(s.server, s.listener, s.done)
	s.logger.Info("metrics endpoint up", zap.String("addr", s.listener.Addr().String()))
	return nil
}

// Stop implements Service
func (s *HTTPService) Stop() error {
	s.mu.Lock()
	srv, ln, done := s.server, s.listener, s.done
	s.server, s.listener, s.done = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if done == nil {
		// Never served
		return ln.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-done
	return err
}

// Addr returns the bound address, or "" before Init
func (s *HTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
