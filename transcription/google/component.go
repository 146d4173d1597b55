package google

import (
	"context"
	"fmt"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/resilience"
	"github.com/kbukum/voicescribe/transcription"
)

// Component manages the Provider's lifetime in the component registry.
type Component struct {
	p    *Provider
	opts transcription.Options
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps p. opts are only used to describe the component.
func NewComponent(p *Provider, opts transcription.Options) *Component {
	return &Component{p: p, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string { return "speech" }

// Start is a no-op: the client is connected by NewProvider.
func (c *Component) Start(_ context.Context) error { return nil }

// Stop closes the gRPC client.
func (c *Component) Stop(_ context.Context) error { return c.p.Close() }

// Health reports degraded while the circuit breaker is not closed.
func (c *Component) Health(_ context.Context) component.Health {
	switch st := c.p.BreakerState(); st {
	case resilience.StateClosed:
		return component.Health{Name: c.Name(), Status: component.StatusHealthy}
	default:
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("circuit breaker %s", st),
		}
	}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Speech-to-Text",
		Type:    "speech",
		Details: fmt.Sprintf("%s %s", c.opts.Language, c.opts.Model),
	}
}
