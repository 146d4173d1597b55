package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
)

// Summary records what was started, for the startup log.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a summary for a service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Entries returns one line per registered component, using Describe when
// the component implements component.Describable.
func (s *Summary) Entries(ctx context.Context, reg *component.Registry) []map[string]interface{} {
	if reg == nil {
		return nil
	}
	entries := make([]map[string]interface{}, 0)
	for _, c := range reg.All() {
		h := c.Health(ctx)
		entry := map[string]interface{}{
			"component": c.Name(),
			"status":    string(h.Status),
		}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Type != "" {
				entry["type"] = desc.Type
			}
			if desc.Details != "" {
				entry["details"] = desc.Details
			}
		}
		if h.Message != "" {
			entry["message"] = h.Message
		}
		entries = append(entries, entry)
	}
	return entries
}

// Log writes the summary as structured log lines.
func (s *Summary) Log(ctx context.Context, reg *component.Registry, log *logger.Logger) {
	for _, entry := range s.Entries(ctx, reg) {
		log.Info("Component ready", entry)
	}
	log.Info("Startup complete", logger.Fields(
		"service", s.serviceName,
		"version", s.version,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
}
