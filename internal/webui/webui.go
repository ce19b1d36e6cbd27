// Package webui serves the operator-facing pages: the rider dashboard
// static files and a development-only debug view of the tracker state.
package webui

import (
	"net/http"

	"tracker.ridelink.org/internal/app"
)

// WebUI wraps the application with the HTML-serving handlers.
type WebUI struct {
	*app.Application
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

// SetWebUIRoutes registers the web pages on the mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
	mux.HandleFunc("GET /dashboard/{file}", webUI.dashboardHandler)
}
