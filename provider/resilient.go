package provider

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/resilience"
)

// ResilienceConfig bundles optional policies for a provider. The zero
// value is a passthrough.
type ResilienceConfig struct {
	// Bulkhead caps concurrent calls.
	Bulkhead *resilience.BulkheadConfig
	// Timeout bounds each call. Zero means no limit.
	Timeout time.Duration
}

// IsEmpty reports whether no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Bulkhead == nil && c.Timeout <= 0
}

// ResilienceState holds the primitives built from a ResilienceConfig.
type ResilienceState struct {
	bh      *resilience.Bulkhead
	timeout time.Duration
}

// BuildResilience creates the primitives for cfg, or nil when cfg is empty.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{timeout: cfg.Timeout}
	if cfg.Bulkhead != nil {
		s.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return s
}

// WithResilience wraps p with the configured policies. An empty config
// returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func(ctx context.Context) (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn inside the bulkhead and under the timeout.
// The timeout starts once a bulkhead slot is held. Resilience failures
// come back as AppErrors: a full bulkhead as SERVICE_UNAVAILABLE, an
// expired deadline as TIMEOUT.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func(ctx context.Context) (T, error)) (T, error) {
	if s == nil {
		result, err := fn(ctx)
		return result, wrapResilienceError(err)
	}

	call := fn
	if s.timeout > 0 {
		call = func(ctx context.Context) (T, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return fn(ctx)
		}
	}

	if s.bh != nil {
		result, err := resilience.ExecuteWithResult(ctx, s.bh, func() (T, error) {
			return call(ctx)
		})
		return result, wrapResilienceError(err)
	}

	result, err := call(ctx)
	return result, wrapResilienceError(err)
}

func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := goerrors.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return goerrors.ServiceUnavailable("transcription engine").
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Timeout("transcription").WithCause(err)
	case errors.Is(err, context.Canceled):
		return goerrors.Timeout("request canceled").WithCause(err)
	default:
		return err
	}
}
