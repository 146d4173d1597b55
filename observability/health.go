package observability

import (
	"context"

	"github.com/kbukum/voicescribe/component"
)

// ServiceHealth describes the overall health of the service and its
// components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// HealthSource reports component health. *component.Registry satisfies it.
type HealthSource interface {
	HealthAll(ctx context.Context) []component.Health
}

// NewServiceHealth creates a ServiceHealth with status healthy.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  component.StatusHealthy,
		Version: version,
	}
}

// CollectHealth builds a ServiceHealth from every component in src.
func CollectHealth(ctx context.Context, service, version string, src HealthSource) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	if src == nil {
		return sh
	}
	for _, h := range src.HealthAll(ctx) {
		sh.AddComponent(h)
	}
	return sh
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch component.Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case component.StatusUnhealthy:
		sh.Status = component.StatusUnhealthy
	case component.StatusDegraded:
		if sh.Status != component.StatusUnhealthy {
			sh.Status = component.StatusDegraded
		}
	}
}

// Healthy reports whether no component is unhealthy.
func (sh *ServiceHealth) Healthy() bool {
	return sh.Status != component.StatusUnhealthy
}
