package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// RunEvery calls fn once immediately and then every interval until ctx is cancelled.
// Errors from fn are logged and do not stop the loop.
// PRE: interval > 0
// POST: Returns nil after ctx is done; no goroutine outlives the call
func RunEvery(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			slog.Error("worker_run_failed", "worker", name, "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("worker_stopped", "worker", name)
			return nil
		case <-ticker.C:
		}
	}
}
