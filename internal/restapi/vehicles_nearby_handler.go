package restapi

import (
	"net/http"
	"strconv"

	"tracker.ridelink.org/internal/models"
)

const (
	defaultNearbyRadiusMeters = 1000.0
	maxNearbyRadiusMeters     = 50000.0
)

// vehiclesNearbyHandler answers "what buses are around me": a spatial
// query against the vehicle index, sorted nearest first.
func (api *RestAPI) vehiclesNearbyHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, lon, fieldErrors := parseLatLon(query.Get("lat"), query.Get("lon"))
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	radius := defaultNearbyRadiusMeters
	if radiusParam := query.Get("radius"); radiusParam != "" {
		parsed, err := strconv.ParseFloat(radiusParam, 64)
		if err != nil || parsed <= 0 {
			api.validationErrorResponse(w, r, map[string][]string{
				"radius": {"must be a positive number of meters"},
			})
			return
		}
		radius = min(parsed, maxNearbyRadiusMeters)
	}

	vehicles := api.Index.Nearby(lat, lon, radius)

	response := models.NewOKResponse(models.NewVehicleListData(vehicles), api.Clock)
	api.sendResponse(w, r, response)
}
