package provider

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/resilience"
)

// WithResilience wraps a RequestResponse provider with resilience middleware.
// Empty config returns the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through the chain
// RateLimiter.Wait → Bulkhead → CircuitBreaker → Retry → fn.
// The breaker sees one outcome per retried sequence. Errors produced by the
// chain itself are returned as AppErrors; errors from fn pass through.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			var zero T
			return zero, wrapResilienceError(err, "")
		}
	}

	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	if s.cb != nil {
		cbCall := call
		name := s.cb.Name()
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = cbCall()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, wrapResilienceError(cbErr, name)
			}
			return result, resultErr
		}
	}

	if s.bh != nil {
		bhCall := call
		var fnErr error
		result, err := resilience.ExecuteWithResult(ctx, s.bh, func() (T, error) {
			r, e := bhCall()
			fnErr = e
			return r, e
		})
		if err != nil && fnErr == nil {
			return result, wrapResilienceError(err, "")
		}
		return result, err
	}

	return call()
}

// wrapResilienceError converts resilience sentinel errors to AppErrors.
func wrapResilienceError(err error, service string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if service == "" {
		service = "provider"
	}

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable(service).
			WithCause(err).
			WithDetail("reason", apperrors.ReasonCircuitOpen)
	case errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable(service).
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.Canceled):
		return apperrors.Timeout("request canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("deadline exceeded").WithCause(err)
	default:
		return err
	}
}
