package restapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	seedSnapshot(t, api, fleetSnapshot())
	server := serveTestApi(t, api)

	resp, err := http.Get(server.URL + "/api/where/config.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Code int        `json:"code"`
		Data configData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	assert.Equal(t, "ridelink-tracker", envelope.Data.ID)
	assert.Equal(t, "test", envelope.Data.Environment)
	assert.Equal(t, 100, envelope.Data.RateLimit)
	assert.Equal(t, 2, envelope.Data.RouteCount)
	assert.Equal(t, 3, envelope.Data.VehicleCount, "vehicle count includes hidden vehicles")
}
