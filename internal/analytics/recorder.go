package analytics

import (
	"context"
	"log/slog"
	"time"

	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/models"
)

// Recorder taps the reconciler's broadcast path and persists passenger
// data for every displayable vehicle. It satisfies the same Broadcaster
// contract as the WebSocket hub, so the reconciler fans out to both.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over the analytics store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With(slog.String("component", "analytics_recorder")),
	}
}

// Broadcast records the passenger count of each vehicle in the set.
// Failures are logged and skipped; analytics must never stall the
// reconciler.
func (r *Recorder) Broadcast(vehicles []models.Vehicle) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, v := range vehicles {
		if v.LastUpdateTime == 0 {
			continue
		}
		err := r.store.Record(ctx, v.ID, v.RouteID, models.PassengerObservation{
			Timestamp: v.LastUpdateTime,
			Count:     v.Passengers,
		})
		if err != nil {
			logging.LogError(r.logger, "failed to record passenger observation", err,
				slog.String("vehicle_id", v.ID))
		}
	}
}
