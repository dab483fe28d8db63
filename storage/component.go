package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/asr-server/component"
	"github.com/kbukum/asr-server/logger"
)

// Component owns the scratch Storage for the lifetime of the process.
type Component struct {
	cfg     Config
	storage Storage
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a storage component for the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage returns the backend, or nil before Start.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

// Start opens the backend and, if configured, sweeps stale scratch files.
func (c *Component) Start(ctx context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s

	if c.cfg.SweepOnStart {
		removed, err := Sweep(ctx, s, c.cfg.SweepAge)
		if err != nil {
			c.log.Warn("scratch sweep failed", logger.Fields(logger.FieldError, err.Error()))
		} else if removed > 0 {
			c.log.Info("removed stale scratch files", logger.Fields("count", removed))
		}
	}
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health reports unhealthy until Start succeeds or when the scratch
// directory cannot be listed.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.storage == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := c.storage.List(ctx, ""); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Scratch Storage",
		Type:    "storage",
		Details: fmt.Sprintf("provider=%s path=%s", c.cfg.Provider, c.cfg.BasePath),
	}
}

// Sweep deletes scratch objects last modified more than olderThan ago and
// returns how many were removed. Only names minted by NewKey are touched;
// anything else in the directory belongs to someone else.
func Sweep(ctx context.Context, s Storage, olderThan time.Duration) (int, error) {
	files, err := s.List(ctx, "")
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, f := range files {
		if !IsScratchKey(f.Path) || f.LastModified.After(cutoff) {
			continue
		}
		if err := s.Delete(ctx, f.Path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// IsScratchKey reports whether key has the <uuid><ext> shape of NewKey.
func IsScratchKey(key string) bool {
	base := path.Base(key)
	_, err := uuid.Parse(strings.TrimSuffix(base, path.Ext(base)))
	return err == nil
}
