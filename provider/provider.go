package provider

import "context"

// Provider is the base interface for external backends (speech recognition,
// the messaging transport, the encoder binary).
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider with a single call shape.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}
