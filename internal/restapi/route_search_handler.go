package restapi

import (
	"net/http"

	"tracker.ridelink.org/internal/models"
	"tracker.ridelink.org/internal/routematch"
)

// routeSearchHandler finds the best route between two free-text endpoints.
// The start may instead be a coordinate pair (the "my location" flow).
func (api *RestAPI) routeSearchHandler(w http.ResponseWriter, r *http.Request) {
	if api.Matcher == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "route search is not configured")
		return
	}

	query := r.URL.Query()
	start := query.Get("start")
	end := query.Get("end")

	var startCoords *routematch.Point
	if query.Has("startLat") || query.Has("startLon") {
		lat, lon, fieldErrors := parseLatLon(query.Get("startLat"), query.Get("startLon"))
		if len(fieldErrors) > 0 {
			api.validationErrorResponse(w, r, fieldErrors)
			return
		}
		startCoords = &routematch.Point{Lat: lat, Lon: lon}
	}

	result := api.Matcher.Search(r.Context(), start, end, startCoords)

	switch result.Status {
	case routematch.StatusSuccess:
		api.sendResponse(w, r, models.NewOKResponse(result, api.Clock))
	case routematch.StatusNotFound:
		api.sendError(w, r, http.StatusNotFound, result.Message)
	default:
		api.sendError(w, r, http.StatusBadRequest, result.Message)
	}
}
