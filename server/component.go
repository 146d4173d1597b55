package server

import (
	"context"
	"fmt"

	"github.com/kbukum/voicescribe/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component wraps Server to implement component.Component. A disabled
// server never binds.
type Component struct {
	server  *Server
	enabled bool
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *Component {
	return &Component{server: s, enabled: s.config.Enabled}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (c *Component) Start(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (c *Component) Stop(ctx context.Context) error {
	return c.server.Stop(ctx)
}

// Health returns the health status of the server.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	if !c.enabled {
		h.Message = "disabled"
	}
	return h
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.enabled {
		details = c.server.Addr()
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s routes=%d", details, len(c.server.engine.Routes())),
	}
}
