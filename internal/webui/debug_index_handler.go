package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/fleet"
)

//go:embed debug_index.html
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "debug_index.html")
	if err != nil {
		// Log the actual error server-side
		slog.Error("failed to parse debug template", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps reconciled tracker state for inspection. It is
// disabled in production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "vehicles":
		data = webUI.Store.All()
		title = "Fleet - All Tracked Vehicles"
	case "displayable":
		data = fleet.FilterDisplayable(webUI.Store.All(), r.URL.Query().Get("routeId"))
		title = "Fleet - Displayable Vehicles"
	case "routes":
		data = webUI.Routes.Ordered()
		title = "Fleet - Routes"
	case "config":
		data = webUI.Config
		title = "Server Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: vehicles, displayable, routes, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
