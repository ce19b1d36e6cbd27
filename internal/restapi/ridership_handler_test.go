package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/analytics"
	"tracker.ridelink.org/internal/models"
)

func TestRidershipHandlerReturnsDailySummary(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC).UnixMilli()
	evening := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, api.Analytics.Record(context.Background(), "bus-1", "R1",
		models.PassengerObservation{Timestamp: morning, Count: 12}))
	require.NoError(t, api.Analytics.Record(context.Background(), "bus-2", "R1",
		models.PassengerObservation{Timestamp: evening, Count: 30}))

	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/ridership/daily.json?date=2025-03-10")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data analytics.DailySummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "2025-03-10", envelope.Data.Date)
	assert.Equal(t, 2, envelope.Data.Observations)
	assert.Equal(t, 30, envelope.Data.PeakCount)
	assert.Equal(t, 2, envelope.Data.ActiveVehicles)
}

func TestRidershipHandlerDefaultsToToday(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	// The mock clock pins "today" to 2025-03-10.
	now := testBaseTime.UnixMilli()
	require.NoError(t, api.Analytics.Record(context.Background(), "bus-1", "R1",
		models.PassengerObservation{Timestamp: now, Count: 7}))

	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/ridership/daily.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data analytics.DailySummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "2025-03-10", envelope.Data.Date)
	assert.Equal(t, 1, envelope.Data.Observations)
}

func TestRidershipHandlerRejectsBadDate(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/ridership/daily.json?date=10-03-2025")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
