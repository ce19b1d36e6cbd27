// Package restapi exposes the tracker's HTTP surface: the JSON API, the
// WebSocket stream, and the operational endpoints.
package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tracker.ridelink.org/internal/app"
	"tracker.ridelink.org/internal/clock"
)

// RestAPI wraps the application with the HTTP handler set.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates the API layer. Missing clock and logger dependencies
// are defaulted so partially-wired test applications still work.
func NewRestAPI(application *app.Application) *RestAPI {
	if application.Clock == nil {
		application.Clock = clock.RealClock{}
	}
	if application.Logger == nil {
		application.Logger = slog.Default()
	}

	return &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(application.Config.RateLimit, time.Second, nil, application.Clock),
	}
}

// Shutdown stops the background goroutines owned by the API layer.
func (api *RestAPI) Shutdown() {
	api.rateLimiter.Stop()
}

// SetRoutes registers all endpoints on the mux. Data endpoints go through
// the full middleware chain; operational endpoints bypass auth and rate
// limiting so probes and scrapers are never throttled.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/where/vehicles.json", api.realtime(api.vehiclesHandler))
	mux.Handle("GET /api/where/vehicles-nearby.json", api.realtime(api.vehiclesNearbyHandler))
	mux.Handle("GET /api/where/vehicle/{id}", api.realtime(api.vehicleHandler))
	mux.Handle("GET /api/where/routes.json", api.cached(api.routesHandler, 60))
	mux.Handle("GET /api/where/route-search.json", api.cached(api.routeSearchHandler, 30))
	mux.Handle("GET /api/where/ridership/daily.json", api.cached(api.ridershipHandler, 60))
	mux.Handle("GET /api/where/current-time.json", api.realtime(api.currentTimeHandler))
	mux.Handle("GET /api/where/config.json", api.cached(api.configHandler, 300))

	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	if api.Hub != nil {
		mux.Handle("GET /ws", api.Hub)
	}
}

// realtime wraps a data handler with the no-cache middleware chain.
func (api *RestAPI) realtime(handler http.HandlerFunc) http.Handler {
	return api.chain(handler, 0)
}

// cached wraps a data handler with a public max-age cache header.
func (api *RestAPI) cached(handler http.HandlerFunc, cacheSeconds int) http.Handler {
	return api.chain(handler, cacheSeconds)
}

func (api *RestAPI) chain(handler http.HandlerFunc, cacheSeconds int) http.Handler {
	var h http.Handler = handler
	h = CacheControlMiddleware(cacheSeconds, h)
	h = api.requireValidKey(h)
	h = MetricsHandler(api.Metrics)(h)
	h = api.rateLimiter.Handler()(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	h = RequestIDMiddleware(h)
	return gzhttp.GzipHandler(h)
}

// requireValidKey rejects data requests without a valid API key. Auth is
// disabled when no keys are configured.
func (api *RestAPI) requireValidKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
