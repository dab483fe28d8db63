package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/asr-server/logger"
)

// Manager owns the initialized providers of one kind and picks one per
// call through its Selector.
type Manager[T Provider] struct {
	mu        sync.RWMutex
	registry  *Registry[T]
	selector  Selector[T]
	providers map[string]T
	order     []string
	log       *logger.Logger
}

// NewManager creates a Manager backed by registry and selector.
func NewManager[T Provider](registry *Registry[T], selector Selector[T]) *Manager[T] {
	return &Manager[T]{
		registry:  registry,
		selector:  selector,
		providers: make(map[string]T),
		log:       logger.Get("provider"),
	}
}

// Initialize creates the named provider and runs its Init hook.
func (m *Manager[T]) Initialize(ctx context.Context, name string, cfg map[string]any) error {
	instance, err := m.registry.Create(name, cfg)
	if err != nil {
		return fmt.Errorf("initialize provider %q: %w", name, err)
	}
	if in, ok := any(instance).(Initializable); ok {
		if err := in.Init(ctx); err != nil {
			return fmt.Errorf("initialize provider %q: %w", name, err)
		}
	}

	m.mu.Lock()
	if _, exists := m.providers[name]; !exists {
		m.order = append(m.order, name)
	}
	m.providers[name] = instance
	m.mu.Unlock()

	m.log.Info("provider initialized", logger.Fields(logger.FieldProvider, name))
	return nil
}

// Get returns the only provider when there is exactly one, and otherwise
// asks the selector.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	providers := m.snapshotLocked()
	m.mu.RUnlock()

	var zero T
	switch len(providers) {
	case 0:
		return zero, fmt.Errorf("no providers initialized")
	case 1:
		for _, p := range providers {
			return p, nil
		}
	}
	return m.selector.Select(ctx, providers)
}

// GetByName returns a specific provider.
func (m *Manager[T]) GetByName(name string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	var zero T
	return zero, fmt.Errorf("provider %q not found", name)
}

// Available returns the names of all initialized providers, sorted.
func (m *Manager[T]) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close runs the Close hook of every provider, newest first, and forgets
// them.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.Lock()
	order := m.order
	providers := m.providers
	m.order = nil
	m.providers = make(map[string]T)
	m.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if c, ok := any(providers[name]).(Closeable); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close provider %q: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Manager[T]) snapshotLocked() map[string]T {
	cp := make(map[string]T, len(m.providers))
	for k, v := range m.providers {
		cp[k] = v
	}
	return cp
}
