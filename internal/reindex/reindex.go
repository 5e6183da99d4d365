// Package reindex runs the optional cron-scheduled full index rebuild.
package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"songbook/pkg/logger"
)

// Start launches the rebuild scheduler when cronExpr is non-empty and
// returns a cancel func. An empty expression disables scheduling; an
// invalid one is a startup error.
func Start(ctx context.Context, cronExpr string, run func() error) (context.CancelFunc, error) {
	if cronExpr == "" {
		return func() {}, nil
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid rebuild cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, run)
	logger.Info("reindex_scheduler_started", "cron", cronExpr)
	return cancel, nil
}

// runScheduler computes the next tick for the cron expression and sleeps
// until then, so full cron syntax is supported without polling.
func runScheduler(ctx context.Context, cronExpr string, run func() error) {
	for {
		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("reindex_next_tick_failed", "cron", cronExpr, "error", err)
			return
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("reindex_scheduler_stopping")
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := run(); err != nil {
			logger.Error("scheduled_reindex_run_failed", "error", err)
			continue
		}
		logger.Info("scheduled_reindex_done", "took", time.Since(start).String())
	}
}
