package restapi

import (
	"encoding/json"
	"net/http"

	"tracker.ridelink.org/internal/logging"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler verifies the state store and analytics database are
// usable. It returns 503 Service Unavailable until the tracker can serve
// traffic.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Liveness: is the core state wired up?
	if api.Application == nil || api.Store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "unavailable",
			Detail: "state store not initialized",
		})
		return
	}

	// Connectivity: is the analytics database reachable?
	if api.Analytics != nil {
		if err := api.Analytics.DB().PingContext(r.Context()); err != nil {
			logging.LogError(api.Logger, "analytics DB ping failed", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{
				Status: "unavailable",
				Detail: "analytics database connection failed",
			})
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status: "ok",
	})
}
