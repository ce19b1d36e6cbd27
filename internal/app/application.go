package app

import (
	"log/slog"

	"tracker.ridelink.org/internal/analytics"
	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/feeds"
	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/routematch"
	"tracker.ridelink.org/internal/ws"
)

// Application holds the dependencies shared by the HTTP handlers,
// middleware, and background feed consumers.
type Application struct {
	Config     appconf.Config
	FeedConfig feeds.Config
	Logger     *slog.Logger
	Clock      clock.Clock
	Metrics    *metrics.Metrics

	Store      *fleet.Store
	Routes     *fleet.RouteTable
	Index      *fleet.Index
	Reconciler *fleet.Reconciler
	Hub        *ws.Hub
	Matcher    *routematch.Matcher
	Analytics  *analytics.Store
}
