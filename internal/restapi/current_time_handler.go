package restapi

import (
	"net/http"

	"tracker.ridelink.org/internal/models"
)

// currentTimeHandler reports the server clock so clients can detect skew
// when rendering lastUpdateTime values.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	timeData := models.NewCurrentTimeData(api.Clock.Now())
	response := models.NewOKResponse(timeData, api.Clock)

	api.sendResponse(w, r, response)
}
