package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/logging"
)

// Bootstrap performs the one-shot initial fetch of the full export and
// applies it synchronously, so the store is populated before live
// subscriptions start. A bootstrap failure is not fatal: the first
// successful snapshot poll fills the store instead.
func Bootstrap(ctx context.Context, config Config, reconciler *fleet.Reconciler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "bootstrap"))

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	snapshot, err := FetchSnapshot(fetchCtx, config.SnapshotURL)
	if err != nil {
		return fmt.Errorf("bootstrap fetch failed: %w", err)
	}

	reconciler.Process(fleet.Event{Snapshot: snapshot})
	logging.LogOperation(logger, "bootstrap_complete",
		slog.Int("buses", len(snapshot.Buses)),
		slog.Int("routes", len(snapshot.Routes)))
	return nil
}
