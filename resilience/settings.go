package resilience

import "time"

// Settings is the config-file form of a retry plus circuit breaker policy.
type Settings struct {
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	InitialBackoff  time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	BreakerFailures int           `yaml:"breaker_failures" mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
}

// ApplyDefaults fills zero values.
func (s *Settings) ApplyDefaults() {
	if s.MaxAttempts == 0 {
		s.MaxAttempts = 3
	}
	if s.InitialBackoff == 0 {
		s.InitialBackoff = 500 * time.Millisecond
	}
	if s.MaxBackoff == 0 {
		s.MaxBackoff = 5 * time.Second
	}
	if s.BreakerFailures == 0 {
		s.BreakerFailures = 5
	}
	if s.BreakerTimeout == 0 {
		s.BreakerTimeout = 30 * time.Second
	}
}

// Retry returns the retry policy. retryIf may be nil.
func (s Settings) Retry(retryIf func(error) bool) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    s.MaxAttempts,
		InitialBackoff: s.InitialBackoff,
		MaxBackoff:     s.MaxBackoff,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        retryIf,
	}
}

// Breaker returns the circuit breaker policy. isFailure may be nil.
func (s Settings) Breaker(name string, isFailure func(error) bool) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             name,
		MaxFailures:      s.BreakerFailures,
		Timeout:          s.BreakerTimeout,
		HalfOpenMaxCalls: 1,
		IsFailure:        isFailure,
	}
}
