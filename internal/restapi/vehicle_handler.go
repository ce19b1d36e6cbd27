package restapi

import (
	"net/http"
	"strings"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/models"
)

// vehicleHandler returns one vehicle by ID. Unlike the list endpoints it
// does not apply the visibility filter, so operators can inspect offline
// or coordinate-less vehicles.
func (api *RestAPI) vehicleHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(r.PathValue("id"), ".json")
	if strings.TrimSpace(id) == "" {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {"must not be empty"},
		})
		return
	}

	state, ok := api.Store.Get(id)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	response := models.NewOKResponse(fleet.ToWire(state), api.Clock)
	api.sendResponse(w, r, response)
}
