package research

import (
	"context"
	"fmt"
	"time"
)

const defaultPollInterval = 2 * time.Second

// Wait polls a research job until it reaches a terminal status or the
// budget elapses. A zero budget polls until the context is done.
func (c *Client) Wait(ctx context.Context, jobID string, pollInterval, budget time.Duration) (Job, error) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		job, err := c.Status(ctx, jobID)
		if err != nil {
			return Job{}, err
		}
		if job.Status == StatusFailed {
			if job.Error != "" {
				return job, fmt.Errorf("research: job %s failed: %s", jobID, job.Error)
			}
			return job, fmt.Errorf("research: job %s failed", jobID)
		}
		if job.Status.Terminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return Job{}, fmt.Errorf("research: waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}
