// Package provider defines the base interface for external backends and the
// resilience chain their calls run through.
//
//	state := provider.BuildResilience(provider.ResilienceConfig{
//	    Retry:          settings.Retry(isTransient),
//	    CircuitBreaker: settings.Breaker("speech", isTransient),
//	})
//	res, err := provider.ExecuteWithResilience(ctx, state, func() (*Result, error) {
//	    return client.Recognize(ctx, req)
//	})
package provider
