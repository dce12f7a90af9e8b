// internal/controller/runner.go
package controller

import (
	"context"
	"time"
)

// Run repeats RunCycle with a fixed sleep between cycles until ctx ends.
// One goroutine. No overlap. No retries within a cycle.
func (c *Controller) Run(ctx context.Context) {
	c.log.Infow("control loop started",
		"interval", c.cfg.Interval, "threshold_cm", c.threshold, "pulse", c.cfg.Pulse)

	for {
		c.RunCycle(ctx)

		if !c.wait(ctx, c.cfg.Interval) {
			c.log.Infow("control loop stopped", "cycles", c.seq)
			return
		}
	}
}

func waitCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
