package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tracker.ridelink.org/internal/analytics"
	"tracker.ridelink.org/internal/app"
	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/feeds"
	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/restapi"
	"tracker.ridelink.org/internal/routematch"
	"tracker.ridelink.org/internal/webui"
	"tracker.ridelink.org/internal/ws"
)

// ServiceConfig holds the external service settings that are neither
// server configuration nor feed configuration.
type ServiceConfig struct {
	AnalyticsDBPath string
	NominatimURL    string
	OSRMURL         string
}

// ParseAPIKeys splits the comma-separated -api-keys flag value. Keys are
// trimmed but not filtered; validation happens at request time.
func ParseAPIKeys(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, len(parts))
	for i, part := range parts {
		keys[i] = strings.TrimSpace(part)
	}
	return keys
}

// BuildApplication wires the fleet state, reconciler, analytics, and
// external clients into one Application.
func BuildApplication(cfg appconf.Config, feedCfg feeds.Config, svcCfg ServiceConfig) (*app.Application, error) {
	logger := logging.NewLogger(cfg.Verbose)
	clk := clock.RealClock{}
	m := metrics.NewWithLogger(logger)

	analyticsStore, err := analytics.NewStore(svcCfg.AnalyticsDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analytics store: %w", err)
	}
	m.StartDBStatsCollector(analyticsStore.DB(), 15*time.Second)

	store := fleet.NewStore(clk)
	routes := fleet.NewRouteTable()
	index := fleet.NewIndex()
	hub := ws.NewHub(logger, m)
	recorder := analytics.NewRecorder(analyticsStore, logger)
	reconciler := fleet.NewReconciler(store, fleet.NewTracker(clk), index, routes,
		fleet.Fanout(hub, recorder), m, logger)

	matcher := routematch.NewMatcher(routes,
		routematch.NewGeocoder(svcCfg.NominatimURL, logger),
		routematch.NewRoadClient(svcCfg.OSRMURL, logger),
		logger)

	return &app.Application{
		Config:     cfg,
		FeedConfig: feedCfg,
		Logger:     logger,
		Clock:      clk,
		Metrics:    m,
		Store:      store,
		Routes:     routes,
		Index:      index,
		Reconciler: reconciler,
		Hub:        hub,
		Matcher:    matcher,
		Analytics:  analyticsStore,
	}, nil
}

// CreateServer builds the HTTP server with the API and web UI routes.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webui.NewWebUI(coreApp).SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return srv, api
}
