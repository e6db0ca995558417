package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSweeper runs Store.Sweep on a fixed interval until ctx is canceled.
// The first sweep happens after one full interval, not at start.
func StartSweeper(ctx context.Context, store Store, interval, maxAge time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := store.Sweep(ctx, maxAge); err != nil {
					logger.Warn("session sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
