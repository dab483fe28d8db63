package provider_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/resilience"
)

// blockingProvider holds every call until release is closed.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingProvider) Name() string                       { return "blocking" }
func (p *blockingProvider) IsAvailable(_ context.Context) bool { return true }
func (p *blockingProvider) Execute(ctx context.Context, in string) (string, error) {
	p.started <- struct{}{}
	select {
	case <-p.release:
		return in, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestWithResilience_EmptyConfig(t *testing.T) {
	p := &echoProvider{name: "raw"}
	wrapped := provider.WithResilience[string, string](p, provider.ResilienceConfig{})
	if wrapped != provider.RequestResponse[string, string](p) {
		t.Fatal("empty config should return the provider unchanged")
	}
}

func TestWithResilience_DelegatesNameAndAvailability(t *testing.T) {
	wrapped := provider.WithResilience[string, string](&echoProvider{name: "whisper"}, provider.ResilienceConfig{Timeout: time.Second})
	if wrapped.Name() != "whisper" || !wrapped.IsAvailable(context.Background()) {
		t.Fatal("expected Name and IsAvailable to delegate")
	}
}

func TestWithResilience_Timeout(t *testing.T) {
	p := &blockingProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
	wrapped := provider.WithResilience[string, string](p, provider.ResilienceConfig{Timeout: 20 * time.Millisecond})

	_, err := wrapped.Execute(context.Background(), "x")
	appErr, ok := goerrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != goerrors.ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected deadline exceeded in the cause chain")
	}
}

func TestWithResilience_BulkheadFull(t *testing.T) {
	p := &blockingProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
	wrapped := provider.WithResilience[string, string](p, provider.ResilienceConfig{
		Bulkhead: &resilience.BulkheadConfig{Name: "engine", MaxConcurrent: 1},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = wrapped.Execute(context.Background(), "first")
	}()
	<-p.started

	_, err := wrapped.Execute(context.Background(), "second")
	appErr, ok := goerrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != goerrors.ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %s", appErr.Code)
	}
	if !errors.Is(err, resilience.ErrBulkheadFull) {
		t.Error("expected ErrBulkheadFull in the cause chain")
	}

	close(p.release)
	wg.Wait()
}

func TestWithResilience_PassesThroughProviderErrors(t *testing.T) {
	wrapped := provider.WithResilience[string, string](&failingProvider{}, provider.ResilienceConfig{
		Bulkhead: &resilience.BulkheadConfig{MaxConcurrent: 2},
		Timeout:  time.Second,
	})

	_, err := wrapped.Execute(context.Background(), "x")
	if err == nil || err.Error() != "intentional failure" {
		t.Fatalf("expected provider error unchanged, got %v", err)
	}
}

func TestExecuteWithResilience_NilState(t *testing.T) {
	out, err := provider.ExecuteWithResilience(context.Background(), nil, func(_ context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || out != 7 {
		t.Fatalf("expected 7, got %d %v", out, err)
	}
}

func TestExecuteWithResilience_NilStateMapsContextErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := provider.ExecuteWithResilience(ctx, nil, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	appErr, ok := goerrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != goerrors.ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected deadline exceeded in the cause chain")
	}
}

func TestBuildResilience(t *testing.T) {
	if provider.BuildResilience(provider.ResilienceConfig{}) != nil {
		t.Error("expected nil state for empty config")
	}
	if provider.BuildResilience(provider.ResilienceConfig{
		Bulkhead: &resilience.BulkheadConfig{MaxConcurrent: 3},
	}) == nil {
		t.Error("expected state for a bulkhead config")
	}
}
