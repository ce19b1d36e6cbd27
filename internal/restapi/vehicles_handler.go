package restapi

import (
	"net/http"
	"strconv"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

// vehiclesHandler lists every displayable vehicle, optionally restricted
// to one route. When lat and lon are supplied each vehicle is annotated
// with its distance from that point.
func (api *RestAPI) vehiclesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	routeID := query.Get("routeId")

	visible := fleet.FilterDisplayable(api.Store.All(), routeID)
	vehicles := fleet.ToWireAll(visible)

	if query.Has("lat") || query.Has("lon") {
		lat, lon, fieldErrors := parseLatLon(query.Get("lat"), query.Get("lon"))
		if len(fieldErrors) > 0 {
			api.validationErrorResponse(w, r, fieldErrors)
			return
		}
		for i := range vehicles {
			if vehicles[i].Lat == nil || vehicles[i].Lon == nil {
				continue
			}
			d := geo.Distance(lat, lon, *vehicles[i].Lat, *vehicles[i].Lon)
			vehicles[i].DistanceMeters = &d
		}
	}

	response := models.NewOKResponse(models.NewVehicleListData(vehicles), api.Clock)
	api.sendResponse(w, r, response)
}

// parseLatLon validates a coordinate pair from query parameters.
func parseLatLon(latParam, lonParam string) (lat, lon float64, fieldErrors map[string][]string) {
	fieldErrors = map[string][]string{}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil || !geo.IsFiniteCoordinate(lat) {
		fieldErrors["lat"] = []string{"must be a finite number"}
	}
	lon, err = strconv.ParseFloat(lonParam, 64)
	if err != nil || !geo.IsFiniteCoordinate(lon) {
		fieldErrors["lon"] = []string{"must be a finite number"}
	}

	if len(fieldErrors) > 0 {
		return 0, 0, fieldErrors
	}
	return lat, lon, nil
}
