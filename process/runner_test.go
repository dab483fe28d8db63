package process_test

import (
	"context"
	"sync"
	"testing"
	"time"

	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/process"
)

func TestRunner_Run(t *testing.T) {
	runner := process.NewRunner(process.Config{Name: "test"})
	result, err := runner.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Stdout) != "hello\n" {
		t.Fatalf("expected 'hello\\n', got %q", string(result.Stdout))
	}
}

func TestRunner_Timeout(t *testing.T) {
	runner := process.NewRunner(process.Config{
		Timeout:     100 * time.Millisecond,
		GracePeriod: 200 * time.Millisecond,
	})
	_, err := runner.Run(context.Background(), process.Command{
		Binary: "sleep",
		Args:   []string{"10"},
	})
	appErr, ok := goerrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != goerrors.ErrCodeTimeout {
		t.Fatalf("expected TIMEOUT, got %s", appErr.Code)
	}
}

func TestRunner_MaxConcurrent(t *testing.T) {
	runner := process.NewRunner(process.Config{Name: "cap", MaxConcurrent: 1})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = runner.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"0.5"}})
	}()
	time.Sleep(100 * time.Millisecond)

	_, err := runner.Run(context.Background(), process.Command{Binary: "true"})
	appErr, ok := goerrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != goerrors.ErrCodeServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %s", appErr.Code)
	}
	wg.Wait()
}

func TestRunner_CommandFailureUnchanged(t *testing.T) {
	runner := process.NewRunner(process.Config{MaxConcurrent: 2, Timeout: 5 * time.Second})
	_, err := runner.Run(context.Background(), process.Command{Binary: "false"})
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if _, ok := goerrors.AsAppError(err); ok {
		t.Fatalf("expected plain process error, got AppError %v", err)
	}
}
