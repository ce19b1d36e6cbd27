package restapi

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/appconf"
)

func TestDataEndpointsRequireKeyWhenConfigured(t *testing.T) {
	api := createTestApiWithConfig(t, appconf.Config{
		Env:       appconf.Test,
		ApiKeys:   []string{"secret"},
		RateLimit: 100,
	})
	defer api.Shutdown()
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/vehicles.json")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/where/vehicles.json?key=secret")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthEndpointSkipsAuth(t *testing.T) {
	api := createTestApiWithConfig(t, appconf.Config{
		Env:       appconf.Test,
		ApiKeys:   []string{"secret"},
		RateLimit: 100,
	})
	defer api.Shutdown()
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitExceededReturns429(t *testing.T) {
	api := createTestApiWithConfig(t, appconf.Config{
		Env:       appconf.Test,
		RateLimit: 1,
	})
	defer api.Shutdown()
	server := serveTestApi(t, api)

	// Burst of 1: the first request passes, the second is throttled.
	resp, err := http.Get(server.URL + "/api/where/vehicles.json")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/where/vehicles.json")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestCacheControlHeaders(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	server := serveTestApi(t, api)

	tests := []struct {
		name           string
		endpoint       string
		expectedHeader string
	}{
		{
			name:           "real-time data is never cached",
			endpoint:       "/api/where/vehicles.json",
			expectedHeader: "no-cache, no-store, must-revalidate",
		},
		{
			name:           "routes are cacheable",
			endpoint:       "/api/where/routes.json",
			expectedHeader: "public, max-age=60",
		},
		{
			name:           "config is cacheable",
			endpoint:       "/api/where/config.json",
			expectedHeader: "public, max-age=300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.endpoint)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.expectedHeader, resp.Header.Get("Cache-Control"))
		})
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	seedVehicle(t, api, "bus-1", 12.97, 77.59)
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tracker_vehicles_tracked")
}

func TestRequestIDHeaderOnDataEndpoints(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/current-time.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
