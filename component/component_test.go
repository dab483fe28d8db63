package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "storage"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "storage"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "engine"})

	got := r.Get("engine")
	if got == nil || got.Name() != "engine" {
		t.Fatalf("expected engine component, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartStopOrder(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	for _, name := range []string{"storage", "engine", "http-server"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	wantStart := []string{"storage", "engine", "http-server"}
	wantStop := []string{"http-server", "engine", "storage"}
	for i := range wantStart {
		if started[i] != wantStart[i] {
			t.Errorf("start[%d] = %s, want %s", i, started[i], wantStart[i])
		}
		if stopped[i] != wantStop[i] {
			t.Errorf("stop[%d] = %s, want %s", i, stopped[i], wantStop[i])
		}
	}
}

func TestStartAllFailureStopsOnlyStarted(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "storage", startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "engine", startErr: fmt.Errorf("binary not found"), startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "http-server", startOrder: &started, stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll to fail")
	}
	if len(started) != 2 {
		t.Errorf("expected start to halt at engine, started %v", started)
	}

	_ = r.StopAll(context.Background())
	if len(stopped) != 1 || stopped[0] != "storage" {
		t.Errorf("expected only storage to be stopped, got %v", stopped)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("a failed")})
	_ = r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("b failed")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected joined stop error")
	}
	for _, want := range []string{"a failed", "b failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestHealthAllAndAggregate(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "storage", health: Health{Name: "storage", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "engine", health: Health{Name: "engine", Status: StatusDegraded}})

	healths := r.HealthAll(context.Background())
	if len(healths) != 2 {
		t.Fatalf("expected 2 health entries, got %d", len(healths))
	}
	if got := Aggregate(healths); got != StatusDegraded {
		t.Errorf("expected degraded, got %s", got)
	}
	if got := Aggregate(append(healths, Health{Status: StatusUnhealthy})); got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
	if got := Aggregate(nil); got != StatusHealthy {
		t.Errorf("expected healthy for no components, got %s", got)
	}
}

func TestAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "one"})
	_ = r.Register(&mockComponent{name: "two"})
	all := r.All()
	if len(all) != 2 || all[0].Name() != "one" || all[1].Name() != "two" {
		t.Errorf("unexpected All() result %v", all)
	}
}

// deadlineComponent records the deadline it is stopped with.
type deadlineComponent struct {
	mockComponent
	deadline time.Time
	hasLimit bool
}

func (d *deadlineComponent) Stop(ctx context.Context) error {
	d.deadline, d.hasLimit = ctx.Deadline()
	return nil
}

func TestStopAllUsesConfiguredTimeout(t *testing.T) {
	r := NewRegistry()
	c := &deadlineComponent{mockComponent: mockComponent{name: "http-server"}}
	_ = r.Register(c)
	_ = r.StartAll(context.Background())

	r.SetStopTimeout(time.Minute)
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if !c.hasLimit {
		t.Fatal("expected a stop deadline")
	}
	if left := time.Until(c.deadline); left <= DefaultStopTimeout {
		t.Errorf("expected deadline beyond %v, got %v", DefaultStopTimeout, left)
	}
}

func TestStopAllWithoutTimeoutUsesCallerContext(t *testing.T) {
	r := NewRegistry()
	c := &deadlineComponent{mockComponent: mockComponent{name: "engine"}}
	_ = r.Register(c)
	_ = r.StartAll(context.Background())

	r.SetStopTimeout(0)
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if c.hasLimit {
		t.Errorf("expected no deadline, got %v", c.deadline)
	}
}
