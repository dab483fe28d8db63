package process

import (
	"context"
	"time"

	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/resilience"
)

// Config holds runner defaults.
type Config struct {
	// Name labels the runner's bulkhead.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// GracePeriod applies to commands that do not set their own.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	// MaxConcurrent caps simultaneous processes. Zero means unbounded.
	MaxConcurrent int `yaml:"max_concurrent,omitempty" mapstructure:"max_concurrent"`
	// MaxWait is how long a run may queue for a slot.
	MaxWait time.Duration `yaml:"max_wait,omitempty" mapstructure:"max_wait"`
}

// Runner executes subprocesses with shared defaults and a process cap that
// persists across calls.
type Runner struct {
	cfg   Config
	state *provider.ResilienceState
}

// NewRunner creates a Runner from cfg.
func NewRunner(cfg Config) *Runner {
	rc := provider.ResilienceConfig{Timeout: cfg.Timeout}
	if cfg.MaxConcurrent > 0 {
		rc.Bulkhead = &resilience.BulkheadConfig{
			Name:          cfg.Name,
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
		}
	}
	return &Runner{cfg: cfg, state: provider.BuildResilience(rc)}
}

// Run executes cmd. Timeouts and a full process cap come back as
// errors.AppError values.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && r.cfg.GracePeriod > 0 {
		cmd.GracePeriod = r.cfg.GracePeriod
	}
	return provider.ExecuteWithResilience(ctx, r.state, func(ctx context.Context) (*Result, error) {
		return Run(ctx, cmd)
	})
}
