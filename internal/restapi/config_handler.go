package restapi

import (
	"net/http"

	"tracker.ridelink.org/internal/models"
)

type configData struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Environment      string `json:"environment"`
	RateLimit        int    `json:"rateLimit"`
	SnapshotInterval string `json:"snapshotInterval"`
	RouteCount       int    `json:"routeCount"`
	VehicleCount     int    `json:"vehicleCount"`
}

// configHandler reports the server's effective configuration and data
// counts for dashboards and support tooling.
func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	entry := configData{
		ID:               "ridelink-tracker",
		Name:             "RideLink Tracker",
		Environment:      api.Config.Env.String(),
		RateLimit:        api.Config.RateLimit,
		SnapshotInterval: api.FeedConfig.SnapshotInterval.String(),
	}
	if api.Routes != nil {
		entry.RouteCount = api.Routes.Len()
	}
	if api.Store != nil {
		entry.VehicleCount = api.Store.Len()
	}

	response := models.NewOKResponse(entry, api.Clock)
	api.sendResponse(w, r, response)
}
