package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/models"
)

// moveNorth returns a point roughly meters north of (lat, lon).
func moveNorth(lat, meters float64) float64 {
	return lat + meters/111320.0
}

func TestDeriveNoSampleNoHeading(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: 28.61, Lon: 77.21, LastUpdatedAt: clk.Now()},
	})

	assert.Empty(t, headings, "first observation only seeds the sample")
	assert.Equal(t, 1, tracker.SampleCount())
}

func TestDeriveSignificantMovementUpdatesHeading(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	start := clk.Now()
	tracker.Derive([]models.VehicleState{{ID: "bus-1", Lat: 28.61, Lon: 77.21, LastUpdatedAt: start}})

	// 50 m north over 5 seconds.
	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: moveNorth(28.61, 50), Lon: 77.21, LastUpdatedAt: start.Add(5 * time.Second)},
	})

	require.Contains(t, headings, "bus-1")
	assert.InDelta(t, 0.0, headings["bus-1"], 1.0, "northward movement infers a ~0 degree heading")
}

func TestDeriveSmallMovementKeepsHeading(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	start := clk.Now()
	tracker.Derive([]models.VehicleState{{ID: "bus-1", Lat: 28.61, Lon: 77.21, LastUpdatedAt: start}})

	// 3 m over 1 second: below the movement threshold.
	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: moveNorth(28.61, 3), Lon: 77.21, LastUpdatedAt: start.Add(time.Second)},
	})

	assert.Empty(t, headings)
}

func TestDeriveStaleSampleKeepsHeading(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	start := clk.Now()
	tracker.Derive([]models.VehicleState{{ID: "bus-1", Lat: 28.61, Lon: 77.21, LastUpdatedAt: start}})

	// 50 m but 40 seconds apart: too stale to describe movement.
	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: moveNorth(28.61, 50), Lon: 77.21, LastUpdatedAt: start.Add(40 * time.Second)},
	})

	assert.Empty(t, headings)
}

func TestDeriveSkipsAuthoritativeHeadings(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	start := clk.Now()
	tracker.Derive([]models.VehicleState{{ID: "bus-1", Lat: 28.61, Lon: 77.21, LastUpdatedAt: start}})

	headings := tracker.Derive([]models.VehicleState{
		{
			ID: "bus-1", Lat: moveNorth(28.61, 50), Lon: 77.21,
			LastUpdatedAt:        start.Add(5 * time.Second),
			HeadingAuthoritative: true,
		},
	})

	assert.Empty(t, headings, "feed-supplied headings are not overwritten this cycle")
}

func TestDeriveUsesClockWhenNoUpdateTime(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	tracker.Derive([]models.VehicleState{{ID: "bus-1", Lat: 28.61, Lon: 77.21}})

	clk.Advance(5 * time.Second)
	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: moveNorth(28.61, 50), Lon: 77.21},
	})

	require.Contains(t, headings, "bus-1")
}

func TestDeriveKeepsOneSamplePerVehicle(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	start := clk.Now()
	for i := range 5 {
		tracker.Derive([]models.VehicleState{
			{ID: "bus-1", Lat: moveNorth(28.61, float64(i*10)), Lon: 77.21, LastUpdatedAt: start.Add(time.Duration(i) * time.Second)},
		})
	}

	assert.Equal(t, 1, tracker.SampleCount())
}

func TestDeriveForgetsDepartedVehicles(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: 1, Lon: 1, LastUpdatedAt: clk.Now()},
		{ID: "bus-2", Lat: 2, Lon: 2, LastUpdatedAt: clk.Now()},
	})
	require.Equal(t, 2, tracker.SampleCount())

	tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: 1, Lon: 1, LastUpdatedAt: clk.Now()},
	})

	assert.Equal(t, 1, tracker.SampleCount())
}

func TestDeriveSkipsInvalidPositions(t *testing.T) {
	clk := testClock()
	tracker := NewTracker(clk)

	nan := func() float64 { var z float64; return z / z }()

	headings := tracker.Derive([]models.VehicleState{
		{ID: "bus-1", Lat: nan, Lon: 77.21, LastUpdatedAt: clk.Now()},
	})

	assert.Empty(t, headings)
	assert.Equal(t, 0, tracker.SampleCount(), "invalid positions never become samples")
}

func TestDeriveIsDeterministic(t *testing.T) {
	run := func() map[string]float64 {
		clk := testClock()
		tracker := NewTracker(clk)
		start := clk.Now()
		tracker.Derive([]models.VehicleState{
			{ID: "a", Lat: 28.61, Lon: 77.21, LastUpdatedAt: start},
			{ID: "b", Lat: 28.62, Lon: 77.22, LastUpdatedAt: start},
		})
		return tracker.Derive([]models.VehicleState{
			{ID: "a", Lat: moveNorth(28.61, 40), Lon: 77.21, LastUpdatedAt: start.Add(4 * time.Second)},
			{ID: "b", Lat: 28.62, Lon: 77.22, LastUpdatedAt: start.Add(4 * time.Second)},
		})
	}

	assert.Equal(t, run(), run())
}
