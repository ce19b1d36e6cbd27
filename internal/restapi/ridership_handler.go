package restapi

import (
	"net/http"
	"time"

	"tracker.ridelink.org/internal/models"
)

// ridershipHandler serves the daily passenger-count aggregates. The date
// parameter defaults to the current UTC day.
func (api *RestAPI) ridershipHandler(w http.ResponseWriter, r *http.Request) {
	if api.Analytics == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "ridership analytics is not configured")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = api.Clock.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"date": {"must be a valid date formatted YYYY-MM-DD"},
		})
		return
	}

	summary, err := api.Analytics.DailySummaryFor(r.Context(), date)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(summary, api.Clock))
}
