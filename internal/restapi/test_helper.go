// test_helper.go contains shared utilities for building a fully wired
// test API in integration tests.
package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/analytics"
	"tracker.ridelink.org/internal/app"
	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/models"
)

// testBaseTime is the mock clock's starting instant for API tests.
var testBaseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// createTestApi builds an API over an in-memory application with a mock
// clock and an in-memory analytics database. Auth is disabled.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithConfig(t, appconf.Config{
		Env:       appconf.Test,
		RateLimit: 100,
	})
}

func createTestApiWithConfig(t *testing.T, cfg appconf.Config) *RestAPI {
	t.Helper()

	clk := clock.NewMockClock(testBaseTime)
	m := metrics.New()
	t.Cleanup(m.Shutdown)

	analyticsStore, err := analytics.NewStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = analyticsStore.Close() })

	store := fleet.NewStore(clk)
	routes := fleet.NewRouteTable()
	index := fleet.NewIndex()
	reconciler := fleet.NewReconciler(store, fleet.NewTracker(clk), index, routes, nil, m, nil)

	application := &app.Application{
		Config:     cfg,
		Clock:      clk,
		Metrics:    m,
		Store:      store,
		Routes:     routes,
		Index:      index,
		Reconciler: reconciler,
		Analytics:  analyticsStore,
	}

	return NewRestAPI(application)
}

// serveTestApi starts an httptest server with the API's full route set and
// middleware chain.
func serveTestApi(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// seedVehicle pushes one granular location event through the reconciler so
// the store, index, and broadcast set all reflect it.
func seedVehicle(t *testing.T, api *RestAPI, id string, lat, lon float64) {
	t.Helper()
	status := models.StatusOnline
	api.Reconciler.Process(fleet.Event{Location: &models.LocationUpdate{
		BusID:     id,
		Lat:       lat,
		Lon:       lon,
		Status:    &status,
		Timestamp: api.Clock.Now().UnixMilli(),
	}})
}

// seedSnapshot replaces the full vehicle and route universe in one event,
// the way the snapshot poller does.
func seedSnapshot(t *testing.T, api *RestAPI, snapshot models.Snapshot) {
	t.Helper()
	api.Reconciler.Process(fleet.Event{Snapshot: &snapshot})
}
