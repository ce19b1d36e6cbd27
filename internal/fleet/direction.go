package fleet

import (
	"time"

	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

const (
	// minMovementMeters is the distance a vehicle must travel before its
	// heading is rederived; jitter below this is GPS noise.
	minMovementMeters = 5.0
	// maxSampleAge bounds how stale the prior sample may be. Beyond this
	// the two positions no longer describe continuous movement.
	maxSampleAge = 30 * time.Second
)

// Tracker derives vehicle headings from successive positions. It retains
// exactly one prior PositionSample per vehicle and is owned by the
// reconciler goroutine, so it needs no locking.
type Tracker struct {
	samples map[string]models.PositionSample
	clock   clock.Clock
}

// NewTracker creates a Tracker using clk to timestamp samples for vehicles
// whose feed record carries no update time.
func NewTracker(clk clock.Clock) *Tracker {
	return &Tracker{
		samples: make(map[string]models.PositionSample),
		clock:   clk,
	}
}

// Derive computes heading overwrites for one reconciliation cycle and
// advances the retained samples. A vehicle's heading is overwritten with the
// bearing from its prior sample to its current position only when a prior
// sample exists, the heading was not set by the feed this cycle, the vehicle
// moved more than minMovementMeters, and the elapsed time is under
// maxSampleAge. Vehicles no longer present are forgotten.
func (t *Tracker) Derive(vehicles []models.VehicleState) map[string]float64 {
	headings := make(map[string]float64)
	next := make(map[string]models.PositionSample, len(vehicles))

	for _, v := range vehicles {
		if !geo.IsFiniteCoordinate(v.Lat) || !geo.IsFiniteCoordinate(v.Lon) {
			continue
		}

		now := v.LastUpdatedAt
		if now.IsZero() {
			now = t.clock.Now()
		}

		if prev, ok := t.samples[v.ID]; ok && !v.HeadingAuthoritative {
			dist := geo.Distance(prev.Lat, prev.Lon, v.Lat, v.Lon)
			elapsed := now.Sub(prev.Timestamp)
			if dist > minMovementMeters && elapsed < maxSampleAge {
				headings[v.ID] = geo.Bearing(prev.Lat, prev.Lon, v.Lat, v.Lon)
			}
		}

		next[v.ID] = models.PositionSample{Lat: v.Lat, Lon: v.Lon, Timestamp: now}
	}

	t.samples = next
	return headings
}

// SampleCount returns the number of retained position samples.
func (t *Tracker) SampleCount() int {
	return len(t.samples)
}
