package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/config"
	"github.com/kbukum/voicescribe/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
	desc     *component.Description
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description { return *d.desc }

func healthy(name string) component.Health {
	return component.Health{Name: name, Status: component.StatusHealthy}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "voicescribe", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "voicescribe" || app.Version != "1.0.0" {
		t.Errorf("unexpected name/version %q/%q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Error("expected registry, logger and summary")
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default graceful timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidationFailsBeforeStart(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(30*time.Second))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", app.gracefulTimeout)
	}
}

func TestRunStartsAndStopsComponents(t *testing.T) {
	app := newTestApp(t)
	db := &mockComponent{name: "database", health: healthy("database")}
	if err := app.RegisterComponent(db); err != nil {
		t.Fatal(err)
	}

	if err := app.Run(canceledContext()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !db.started || !db.stopped {
		t.Errorf("expected started and stopped, got started=%v stopped=%v", db.started, db.stopped)
	}
}

func TestRunStartsComponentsRegisteredDuringConfigure(t *testing.T) {
	app := newTestApp(t)
	dispatcher := &mockComponent{name: "dispatcher", health: healthy("dispatcher")}

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "voicescribe" {
			t.Errorf("expected typed config in callback")
		}
		return a.RegisterComponent(dispatcher)
	})

	if err := app.Run(canceledContext()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !dispatcher.started || !dispatcher.stopped {
		t.Error("component registered in configure should be started and stopped")
	}
}

func TestRunComponentStartErrorCleansUp(t *testing.T) {
	app := newTestApp(t)
	db := &mockComponent{name: "database", health: healthy("database")}
	speech := &mockComponent{name: "speech", startErr: fmt.Errorf("invalid credentials")}
	_ = app.RegisterComponent(db)
	_ = app.RegisterComponent(speech)

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected start error, got %v", err)
	}
	if !db.stopped {
		t.Error("started components should be stopped after a failed startup")
	}
}

func TestHooksRunInOrder(t *testing.T) {
	app := newTestApp(t)
	var order []string
	app.OnStart(func(ctx context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error { order = append(order, "configure"); return nil })
	app.OnReady(func(ctx context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(ctx context.Context) error { order = append(order, "stop"); return nil })

	if err := app.Run(canceledContext()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(order, ","); got != "start,configure,ready,stop" {
		t.Errorf("unexpected hook order %q", got)
	}
}

func TestHookErrorAbortsStartup(t *testing.T) {
	tests := []struct {
		name    string
		install func(a *App[*testConfig])
		want    string
	}{
		{"start", func(a *App[*testConfig]) {
			a.OnStart(func(ctx context.Context) error { return fmt.Errorf("boom") })
		}, "onStart hook failed"},
		{"configure", func(a *App[*testConfig]) {
			a.OnConfigure(func(ctx context.Context, _ *App[*testConfig]) error { return fmt.Errorf("boom") })
		}, "configuration failed"},
		{"ready", func(a *App[*testConfig]) {
			a.OnReady(func(ctx context.Context) error { return fmt.Errorf("boom") })
		}, "onReady hook failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			tc.install(app)
			err := app.Run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestStopErrorsAreReturned(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "database", stopErr: fmt.Errorf("close failed"), health: healthy("database")})
	err := app.Run(canceledContext())
	if err == nil || !strings.Contains(err.Error(), "close failed") {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("empty registry should be ready, got %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{name: "database", health: healthy("database")})
	_ = app.RegisterComponent(&mockComponent{name: "speech", health: component.Health{
		Name: "speech", Status: component.StatusDegraded, Message: "circuit open",
	}})

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "speech=degraded(circuit open)") {
		t.Errorf("expected degraded speech in error, got %v", err)
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app := newTestApp(t)
	if sig := app.WaitForSignal(canceledContext()); sig != nil {
		t.Errorf("expected nil signal on context cancellation, got %v", sig)
	}
}

func TestSummaryEntries(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "plain", health: healthy("plain")})
	_ = app.RegisterComponent(&describedComponent{mockComponent{
		name:   "database",
		health: healthy("database"),
		desc:   &component.Description{Type: "database", Details: "sqlite data/stats.db"},
	}})

	entries := app.Summary.Entries(context.Background(), app.Components)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0]["type"]; ok {
		t.Error("plain component should have no type")
	}
	if entries[1]["details"] != "sqlite data/stats.db" {
		t.Errorf("unexpected details %v", entries[1]["details"])
	}
	if app.Summary.Entries(context.Background(), nil) != nil {
		t.Error("nil registry should yield no entries")
	}
}
