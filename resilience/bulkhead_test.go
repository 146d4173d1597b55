package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "ffmpeg", MaxConcurrent: 2})

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", peak)
	}
	if b.InUse() != 0 {
		t.Errorf("expected all slots released, %d in use", b.InUse())
	}
}

func TestBulkhead_MaxWaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 5 * time.Millisecond})
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitsForContext(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := b.Execute(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	got, err := ExecuteWithResult(context.Background(), b, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("expected 42, got %d (%v)", got, err)
	}
}

func TestSettings_DefaultsAndPolicies(t *testing.T) {
	var s Settings
	s.ApplyDefaults()
	if s.MaxAttempts != 3 || s.BreakerFailures != 5 || s.BreakerTimeout != 30*time.Second {
		t.Errorf("unexpected defaults %+v", s)
	}
	r := s.Retry(nil)
	if r.MaxAttempts != 3 || r.InitialBackoff != 500*time.Millisecond {
		t.Errorf("unexpected retry policy %+v", r)
	}
	cb := s.Breaker("speech", nil)
	if cb.Name != "speech" || cb.MaxFailures != 5 {
		t.Errorf("unexpected breaker policy %+v", cb)
	}
}
