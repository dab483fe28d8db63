package transcription

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/asr-server/component"
	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/observability"
	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/resilience"
)

// MetricsSource hands out the service metrics once observability has
// started. *observability.Component implements it.
type MetricsSource interface {
	Metrics() *observability.Metrics
}

// Engine is the process-wide handle on the configured speech-recognition
// engines. It is created once, started by the component registry and
// shared read-only by every request.
type Engine struct {
	cfg         Config
	serviceName string
	registry    *provider.Registry[Provider]
	metrics     MetricsSource
	log         *logger.Logger

	mu       sync.RWMutex
	manager  *provider.Manager[Provider]
	executor Executor
}

var (
	_ component.Component   = (*Engine)(nil)
	_ component.Describable = (*Engine)(nil)
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetricsSource records engine calls on the source's metrics.
func WithMetricsSource(m MetricsSource) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithServiceName sets the span name prefix. Defaults to "asr-server".
func WithServiceName(name string) EngineOption {
	return func(e *Engine) { e.serviceName = name }
}

// NewEngine creates an engine component. registry must contain a factory
// for every name in cfg.Providers().
func NewEngine(cfg Config, registry *provider.Registry[Provider], log *logger.Logger, opts ...EngineOption) *Engine {
	cfg.ApplyDefaults()
	e := &Engine{
		cfg:         cfg,
		serviceName: "asr-server",
		registry:    registry,
		log:         log.WithComponent("engine"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Name() string { return "engine" }

// Start creates the primary and fallback engines and builds the call chain.
func (e *Engine) Start(ctx context.Context) error {
	names := e.cfg.Providers()
	for _, name := range names {
		if !e.registry.Has(name) {
			return fmt.Errorf("engine start: unknown provider %q (registered: %s)",
				name, strings.Join(e.registry.List(), ", "))
		}
	}

	manager := provider.NewManager[Provider](e.registry, &provider.PrioritySelector[Provider]{Priority: names})
	for _, name := range names {
		if err := manager.Initialize(ctx, name, e.cfg.EngineConfig(name)); err != nil {
			_ = manager.Close(ctx)
			return fmt.Errorf("engine start: %w", err)
		}
	}

	var metrics *observability.Metrics
	if e.metrics != nil {
		metrics = e.metrics.Metrics()
	}

	rc := provider.ResilienceConfig{Timeout: e.cfg.Timeout}
	if e.cfg.MaxConcurrent > 0 {
		rc.Bulkhead = &resilience.BulkheadConfig{
			Name:          "engine",
			MaxConcurrent: e.cfg.MaxConcurrent,
			MaxWait:       e.cfg.MaxWait,
			OnReject: func(name string, err error) {
				e.log.Warn("engine call rejected", logger.Fields("bulkhead", name, logger.FieldError, err.Error()))
			},
		}
	}

	executor := provider.WithResilience(provider.Chain(
		provider.WithLogging[TranscriptionRequest, *TranscriptionResponse](e.log),
		provider.WithMetrics[TranscriptionRequest, *TranscriptionResponse](metrics, "transcribe"),
		provider.WithTracing[TranscriptionRequest, *TranscriptionResponse](e.serviceName),
	)(&managed{manager: manager, label: strings.Join(names, ",")}), rc)

	e.mu.Lock()
	e.manager = manager
	e.executor = executor
	e.mu.Unlock()

	e.log.Info("engine started", logger.Fields("providers", strings.Join(manager.Available(), ",")))
	return nil
}

// Stop closes every engine.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	manager := e.manager
	e.manager = nil
	e.executor = nil
	e.mu.Unlock()

	if manager == nil {
		return nil
	}
	return manager.Close(ctx)
}

// Transcribe runs one request through the engine chain: concurrency cap,
// timeout, logging, metrics, tracing, then the selected engine.
func (e *Engine) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	e.mu.RLock()
	executor := e.executor
	e.mu.RUnlock()

	if executor == nil {
		return nil, goerrors.ServiceUnavailable("transcription engine").WithDetail("reason", "engine not started")
	}
	if req.Language == "" {
		req.Language = e.cfg.Language
	}
	return executor.Execute(ctx, req)
}

// Health is healthy when the primary engine is available, degraded when
// only a fallback is, and unhealthy otherwise.
func (e *Engine) Health(ctx context.Context) component.Health {
	e.mu.RLock()
	manager := e.manager
	e.mu.RUnlock()

	if manager == nil {
		return component.Health{Name: e.Name(), Status: component.StatusUnhealthy, Message: "engine not started"}
	}

	for i, name := range e.cfg.Providers() {
		p, err := manager.GetByName(name)
		if err != nil || !p.IsAvailable(ctx) {
			continue
		}
		if i == 0 {
			return component.Health{Name: e.Name(), Status: component.StatusHealthy}
		}
		return component.Health{
			Name:    e.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("primary %s unavailable, using %s", e.cfg.Provider, name),
		}
	}
	return component.Health{Name: e.Name(), Status: component.StatusUnhealthy, Message: "no engine available"}
}

func (e *Engine) Describe() component.Description {
	details := "provider=" + e.cfg.Provider
	if len(e.cfg.Fallbacks) > 0 {
		details += " fallbacks=" + strings.Join(e.cfg.Fallbacks, ",")
	}
	if e.cfg.MaxConcurrent > 0 {
		details += fmt.Sprintf(" max_concurrent=%d", e.cfg.MaxConcurrent)
	}
	if e.cfg.Timeout > 0 {
		details += " timeout=" + e.cfg.Timeout.String()
	}
	return component.Description{Name: "Transcription Engine", Type: "engine", Details: details}
}

// managed resolves the engine per call through the manager.
type managed struct {
	manager *provider.Manager[Provider]
	label   string
}

func (m *managed) Name() string { return m.label }

func (m *managed) IsAvailable(ctx context.Context) bool {
	_, err := m.manager.Get(ctx)
	return err == nil
}

func (m *managed) Execute(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	p, err := m.manager.Get(ctx)
	if err != nil {
		return nil, goerrors.ServiceUnavailable("transcription engine").WithCause(err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrProvider, p.Name())
	return AsRequestResponse(p).Execute(ctx, req)
}
