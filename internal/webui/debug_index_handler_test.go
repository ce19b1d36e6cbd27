package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tracker.ridelink.org/internal/app"
	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/models"
)

func testWebUI(env appconf.Environment) *WebUI {
	clk := clock.NewMockClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := fleet.NewStore(clk)
	routes := fleet.NewRouteTable()

	status := models.StatusOnline
	store.ApplyLocation(models.LocationUpdate{BusID: "bus-1", Lat: 12.97, Lon: 77.59, Status: &status})
	routes.ReplaceAll(map[string]models.RouteDocument{
		"R1": {Name: "Town A - Town B", Start: "Town A", End: "Town B"},
	})

	return NewWebUI(&app.Application{
		Config: appconf.Config{Env: env},
		Store:  store,
		Routes: routes,
	})
}

func TestDebugIndexHandler_ProductionReturns404(t *testing.T) {
	webUI := testWebUI(appconf.Production)

	req, _ := http.NewRequest("GET", "/debug?dataType=vehicles", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code, "Should return 404 in Production")
}

func TestDebugIndexHandler_DumpsVehicles(t *testing.T) {
	webUI := testWebUI(appconf.Development)

	req, _ := http.NewRequest("GET", "/debug?dataType=vehicles", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bus-1")
}

func TestDebugIndexHandler_DumpsRoutes(t *testing.T) {
	webUI := testWebUI(appconf.Development)

	req, _ := http.NewRequest("GET", "/debug?dataType=routes", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Town A - Town B")
}

func TestDebugIndexHandler_UnknownDataType(t *testing.T) {
	webUI := testWebUI(appconf.Development)

	req, _ := http.NewRequest("GET", "/debug?dataType=bogus", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Choose a data type")
}
