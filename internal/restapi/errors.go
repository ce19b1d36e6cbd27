package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/models"
)

// serverErrorResponse logs the error and sends a generic 500 so internal
// details never leak to clients.
func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "internal server error", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	http.Error(w, "the server encountered a problem and could not process your request",
		http.StatusInternalServerError)
}

// validationErrorResponse reports field-level validation failures as a 400
// with the offending fields in the response data.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)

	response := models.ResponseModel{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Text:        "invalid request parameters",
		Version:     2,
		Data:        map[string]any{"fieldErrors": fieldErrors},
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}
