package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/observability"
	"github.com/kbukum/asr-server/provider"
)

type echoProvider struct {
	name string
}

func (p *echoProvider) Name() string                       { return p.name }
func (p *echoProvider) IsAvailable(_ context.Context) bool { return true }
func (p *echoProvider) Execute(_ context.Context, in string) (string, error) {
	return "echo:" + in, nil
}

// tracingRR records when it runs around its inner provider.
type tracingRR struct {
	tag   string
	order *[]string
	inner provider.RequestResponse[string, string]
}

func (r *tracingRR) Name() string                         { return r.inner.Name() }
func (r *tracingRR) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }
func (r *tracingRR) Execute(ctx context.Context, in string) (string, error) {
	*r.order = append(*r.order, r.tag+":before")
	out, err := r.inner.Execute(ctx, in)
	*r.order = append(*r.order, r.tag+":after")
	return out, err
}

type failingProvider struct{}

func (p *failingProvider) Name() string                       { return "fail" }
func (p *failingProvider) IsAvailable(_ context.Context) bool { return true }
func (p *failingProvider) Execute(_ context.Context, _ string) (string, error) {
	return "", errors.New("intentional failure")
}

func testMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	metrics, err := observability.NewMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return metrics
}

func TestChain_Empty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(&echoProvider{name: "test"})
	if wrapped.Name() != "test" {
		t.Fatalf("expected 'test', got %q", wrapped.Name())
	}
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string

	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return &tracingRR{tag: tag, order: &order, inner: inner}
		}
	}

	wrapped := provider.Chain(mw("A"), mw("B"), mw("C"))(&echoProvider{name: "test"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := []string{"A:before", "B:before", "C:before", "C:after", "B:after", "A:after"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestWithLogging(t *testing.T) {
	log := logger.NewDefault("test")

	wrapped := provider.WithLogging[string, string](log)(&echoProvider{name: "log-test"})
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
	if wrapped.Name() != "log-test" || !wrapped.IsAvailable(context.Background()) {
		t.Fatal("expected Name and IsAvailable to delegate")
	}

	failing := provider.WithLogging[string, string](log)(&failingProvider{})
	if _, err := failing.Execute(context.Background(), "hello"); err == nil {
		t.Fatal("expected error to pass through")
	}
}

func TestWithTracing(t *testing.T) {
	wrapped := provider.WithTracing[string, string]("asr-server")(&echoProvider{name: "trace-test"})
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}

	failing := provider.WithTracing[string, string]("asr-server")(&failingProvider{})
	if _, err := failing.Execute(context.Background(), "hello"); err == nil {
		t.Fatal("expected error to pass through")
	}
}

func TestWithMetrics(t *testing.T) {
	metrics := testMetrics(t)

	wrapped := provider.WithMetrics[string, string](metrics, "transcribe")(&echoProvider{name: "metrics-test"})
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}

	failing := provider.WithMetrics[string, string](metrics, "transcribe")(&failingProvider{})
	if _, err := failing.Execute(context.Background(), "hello"); err == nil {
		t.Fatal("expected error to pass through")
	}
}

func TestWithMetrics_NilIsPassthrough(t *testing.T) {
	p := &echoProvider{name: "raw"}
	wrapped := provider.WithMetrics[string, string](nil, "transcribe")(p)
	if wrapped != provider.RequestResponse[string, string](p) {
		t.Fatal("expected nil metrics to return the provider unchanged")
	}
}

func TestChain_AllMiddlewares(t *testing.T) {
	wrapped := provider.Chain(
		provider.WithLogging[string, string](logger.NewDefault("test")),
		provider.WithMetrics[string, string](testMetrics(t), "transcribe"),
		provider.WithTracing[string, string]("asr-server"),
	)(&echoProvider{name: "full-stack"})

	resilient := provider.WithResilience(wrapped, provider.ResilienceConfig{})
	result, err := resilient.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}
