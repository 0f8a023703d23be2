package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

// LinkLister supplies the links to sync at the start of each pass, so
// links added while the daemon runs are picked up on the next pass.
// Implemented by repositories.LinkRepository.
type LinkLister interface {
	List() ([]*models.UserLink, error)
}

// Daemon runs sync passes back-to-back with a fixed idle delay between
// completions. A slow pass delays the next one; passes never overlap.
type Daemon struct {
	engine   *SyncEngine
	links    LinkLister
	interval time.Duration
	logger   *log.Logger

	// OnPass, when non-nil, receives each completed pass result. Used by
	// the CLI to print summaries.
	OnPass func(*SyncRunResult)
}

// NewDaemon creates a Daemon that syncs the listed links every interval.
func NewDaemon(engine *SyncEngine, links LinkLister, interval time.Duration, logger *log.Logger) *Daemon {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Daemon{
		engine:   engine,
		links:    links,
		interval: interval,
		logger:   logger,
	}
}

// Run executes sync passes until the context is cancelled. Cancellation
// is observed between passes and during the idle delay; a pass failure
// (library unavailable) is logged and the daemon waits for the next
// pass rather than exiting.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("starting daemon", "interval", d.interval)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		d.runPass(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped")
			return ctx.Err()
		case <-time.After(d.interval):
		}
	}
}

func (d *Daemon) runPass(ctx context.Context) {
	links, err := d.links.List()
	if err != nil {
		d.logger.Error("failed to list links, skipping pass", "error", err)
		return
	}
	if len(links) == 0 {
		d.logger.Warn("no linked users configured, nothing to sync")
		return
	}

	result, err := d.engine.RunAll(ctx, links, nil)
	if err != nil {
		d.logger.Error("sync pass failed", "error", err)
		return
	}

	d.logger.Info("sync pass complete",
		"succeeded", result.Succeeded, "failed", result.Failed, "skipped", result.Skipped)

	if d.OnPass != nil {
		d.OnPass(result)
	}
}
