package service

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Hub owns registered services and drives their lifecycle in dependency order
type Hub struct {
	logger *zap.Logger

	mu       sync.RWMutex
	services map[string]Service
	sorted   []string // dependency order, computed on InitAll
	inited   []string
	started  []string
}

// NewHub creates an empty hub; a nil logger discards
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:   logger.Named("hub"),
		services: make(map[string]Service),
	}
}

// Register adds svc; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service as T, panicking when absent or of another type
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll calls Init on every service in dependency order.
// On failure the services already initialized are stopped in reverse order.
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sorted == nil {
		order, err := h.topologicalSort()
		if err != nil {
			return err
		}
		h.sorted = order
	}

	h.inited = h.inited[:0]
	for _, name := range h.sorted {
		if err := h.services[name].Init(args...); err != nil {
			h.stopReverse(h.inited)
			h.inited = nil
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		h.logger.Debug("service initialized", zap.String("service", name))
		h.inited = append(h.inited, name)
	}
	return nil
}

// StartAll calls Start in dependency order.
// On failure every initialized service is stopped in reverse order.
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = h.started[:0]
	for _, name := range h.inited {
		if err := h.services[name].Start(); err != nil {
			h.stopReverse(h.inited)
			h.started, h.inited = nil, nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.logger.Debug("service started", zap.String("service", name))
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops every initialized service in reverse order; errors are logged
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopReverse(h.inited)
	h.started, h.inited = nil, nil
}

func (h *Hub) stopReverse(names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		if err := h.services[names[i]].Stop(); err != nil {
			h.logger.Warn("service stop failed", zap.String("service", names[i]), zap.Error(err))
		}
	}
}

// topologicalSort orders services with Kahn's algorithm, ties broken by name
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for name, svc := range h.services {
		inDegree[name] += 0
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(h.services))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		var ready []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(h.services) {
		return nil, fmt.Errorf("circular dependency detected in services")
	}
	return result, nil
}

// Names returns the registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
