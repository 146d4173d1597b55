package provider

import (
	"github.com/kbukum/voicescribe/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped; a zero config is a passthrough.
type ResilienceConfig struct {
	// CircuitBreaker stops calls after repeated failures.
	CircuitBreaker *resilience.CircuitBreakerConfig
	// Retry retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
	// RateLimiter paces calls with a token bucket.
	RateLimiter *resilience.RateLimiterConfig
	// Bulkhead caps concurrent calls.
	Bulkhead *resilience.BulkheadConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil && c.RateLimiter == nil && c.Bulkhead == nil
}

// ResilienceState holds initialized resilience primitives built from config.
// One state is shared by every call of a provider so breaker and limiter
// state persists.
type ResilienceState struct {
	cb       *resilience.CircuitBreaker
	rl       *resilience.RateLimiter
	bh       *resilience.Bulkhead
	retryCfg *resilience.RetryConfig
}

// BuildResilience creates initialized resilience primitives from config.
// It returns nil for an empty config.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{retryCfg: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	if cfg.RateLimiter != nil {
		s.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.Bulkhead != nil {
		s.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return s
}

// BreakerState reports the circuit breaker state, or closed when none is
// configured.
func (s *ResilienceState) BreakerState() resilience.State {
	if s == nil || s.cb == nil {
		return resilience.StateClosed
	}
	return s.cb.State()
}
