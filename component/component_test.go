package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicescribe/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	stopDelay  time.Duration
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
	if m.stopDelay > 0 {
		select {
		case <-time.After(m.stopDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func newTestRegistry() *Registry {
	return NewRegistry(logger.Nop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "database"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&mockComponent{name: "database"}); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	c := &mockComponent{name: "speech"}
	_ = r.Register(c)
	if r.Get("speech") != c {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartAndStopOrder(t *testing.T) {
	var started, stopped []string
	r := newTestRegistry()
	for _, name := range []string{"database", "speech", "http-server", "dispatcher"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	if strings.Join(started, ",") != "database,speech,http-server,dispatcher" {
		t.Errorf("unexpected start order %v", started)
	}
	if strings.Join(stopped, ",") != "dispatcher,http-server,speech,database" {
		t.Errorf("unexpected stop order %v", stopped)
	}
}

func TestStartAllErrorStopsOnlyStarted(t *testing.T) {
	var started, stopped []string
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "database", startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "speech", startErr: fmt.Errorf("bad credentials"), startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "dispatcher", startOrder: &started, stopOrder: &stopped})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "speech") {
		t.Fatalf("expected speech start error, got %v", err)
	}
	if len(started) != 2 {
		t.Errorf("dispatcher must not start after a failure, started %v", started)
	}

	_ = r.StopAll(context.Background())
	if strings.Join(stopped, ",") != "database" {
		t.Errorf("only started components should stop, stopped %v", stopped)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("a failed")})
	_ = r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("b failed")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected stop errors")
	}
	if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestStopTimeout(t *testing.T) {
	r := newTestRegistry()
	r.SetStopTimeout(10 * time.Millisecond)
	_ = r.Register(&mockComponent{name: "slow", stopDelay: time.Second})
	_ = r.StartAll(context.Background())

	start := time.Now()
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected timeout error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("stop timeout not applied")
	}
}

func TestHealthAllAndOverall(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "database", health: Health{Name: "database", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "speech", health: Health{Name: "speech", Status: StatusDegraded}})

	healths := r.HealthAll(context.Background())
	if len(healths) != 2 {
		t.Fatalf("expected 2 health entries, got %d", len(healths))
	}
	if got := Overall(healths); got != StatusDegraded {
		t.Errorf("expected degraded, got %s", got)
	}

	healths = append(healths, Health{Name: "dispatcher", Status: StatusUnhealthy})
	if got := Overall(healths); got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
	if got := Overall(nil); got != StatusHealthy {
		t.Errorf("expected healthy for no components, got %s", got)
	}
}

func TestStartAllSkipsStarted(t *testing.T) {
	var started []string
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "database", startOrder: &started})
	_ = r.StartAll(context.Background())
	_ = r.Register(&mockComponent{name: "dispatcher", startOrder: &started})
	_ = r.StartAll(context.Background())

	if strings.Join(started, ",") != "database,dispatcher" {
		t.Errorf("each component should start once, got %v", started)
	}
}
