package process_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/voicescribe/process"
	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/resilience"
)

func TestRunner_AppliesTimeout(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		Name:        "ffmpeg",
		Timeout:     100 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	})
	start := time.Now()
	_, err := runner.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"10"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout not applied, took %v", elapsed)
	}
}

func TestRunner_MaxConcurrent(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{Name: "ffmpeg", MaxConcurrent: 1})

	var wg sync.WaitGroup
	var failures atomic.Int32
	start := time.Now()
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runner.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"0.1"}}); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("queued runs should wait for a slot, %d failed", failures.Load())
	}
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("expected runs to be serialized, took only %v", elapsed)
	}
}

func TestRunner_CircuitBreakerTrips(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		Name: "ffmpeg",
		Resilience: provider.ResilienceConfig{
			CircuitBreaker: &resilience.CircuitBreakerConfig{Name: "ffmpeg", MaxFailures: 2, Timeout: time.Hour},
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := runner.Run(context.Background(), process.Command{Binary: "false"}); err == nil {
			t.Fatal("expected failure")
		}
	}
	if runner.IsAvailable(context.Background()) {
		t.Error("runner should report unavailable while the breaker is open")
	}
	if _, err := runner.Execute(context.Background(), process.Command{Binary: "true"}); err == nil {
		t.Error("expected open breaker to reject the call")
	}
}

func TestRunner_Name(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{Name: "ffmpeg"})
	if runner.Name() != "ffmpeg" {
		t.Errorf("expected ffmpeg, got %q", runner.Name())
	}
	if !runner.IsAvailable(context.Background()) {
		t.Error("runner without breaker should be available")
	}
}
