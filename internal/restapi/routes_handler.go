package restapi

import (
	"net/http"

	"tracker.ridelink.org/internal/models"
)

type routeListData struct {
	Count  int            `json:"count"`
	Routes []models.Route `json:"routes"`
}

// routesHandler lists the known routes in stable order.
func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	routes := api.Routes.All()
	if routes == nil {
		routes = []models.Route{}
	}

	response := models.NewOKResponse(routeListData{Count: len(routes), Routes: routes}, api.Clock)
	api.sendResponse(w, r, response)
}
