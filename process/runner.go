package process

import (
	"context"
	"time"

	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/resilience"
)

var _ provider.RequestResponse[Command, *Result] = (*Runner)(nil)

// RunnerConfig configures defaults applied to every command a Runner executes.
type RunnerConfig struct {
	// Name identifies the runner in logs and errors.
	Name string
	// Timeout bounds each execution. Zero means no timeout beyond the caller's context.
	Timeout time.Duration
	// GracePeriod is the default SIGTERM→SIGKILL grace period.
	GracePeriod time.Duration
	// MaxConcurrent caps simultaneous subprocesses. Zero means unlimited.
	MaxConcurrent int
	// Resilience adds optional retry/breaker policies.
	Resilience provider.ResilienceConfig
}

// Runner executes subprocesses with shared defaults and persistent
// resilience state.
type Runner struct {
	cfg   RunnerConfig
	state *provider.ResilienceState
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	rc := cfg.Resilience
	if cfg.MaxConcurrent > 0 && rc.Bulkhead == nil {
		rc.Bulkhead = &resilience.BulkheadConfig{Name: cfg.Name, MaxConcurrent: cfg.MaxConcurrent}
	}
	return &Runner{cfg: cfg, state: provider.BuildResilience(rc)}
}

// Run executes cmd. The timeout covers the whole call, including time spent
// queued for a concurrency slot.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && r.cfg.GracePeriod > 0 {
		cmd.GracePeriod = r.cfg.GracePeriod
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	return provider.ExecuteWithResilience(ctx, r.state, func() (*Result, error) {
		return Run(ctx, cmd)
	})
}

// Name returns the runner name.
func (r *Runner) Name() string { return r.cfg.Name }

// IsAvailable reports whether the runner's breaker currently admits calls.
func (r *Runner) IsAvailable(_ context.Context) bool {
	return r.state.BreakerState() != resilience.StateOpen
}

// Execute runs a command (implements provider.RequestResponse[Command, *Result]).
func (r *Runner) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return r.Run(ctx, cmd)
}
