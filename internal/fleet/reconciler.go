package fleet

import (
	"context"
	"log/slog"

	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/models"
)

// Event is one unit of feed input: exactly one of the fields is set.
type Event struct {
	Location *models.LocationUpdate
	Status   *models.StatusUpdate
	Snapshot *models.Snapshot
}

// Broadcaster receives the displayable vehicle set after each cycle that
// applied an event. The WebSocket hub implements it.
type Broadcaster interface {
	Broadcast(vehicles []models.Vehicle)
}

// Reconciler merges both feed channels into the store from a single
// goroutine, rederives headings, rebuilds the spatial index, and broadcasts
// the displayable set. All mutation of the store, tracker, and index happens
// on this goroutine.
type Reconciler struct {
	store       *Store
	tracker     *Tracker
	index       *Index
	routes      *RouteTable
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger

	intake       chan Event
	shutdownChan chan struct{}
}

// NewReconciler wires the reconciler to its collaborators. broadcaster may
// be nil when no live clients are served (tests, the import tool).
func NewReconciler(store *Store, tracker *Tracker, index *Index, routes *RouteTable, broadcaster Broadcaster, m *metrics.Metrics, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:        store,
		tracker:      tracker,
		index:        index,
		routes:       routes,
		broadcaster:  broadcaster,
		metrics:      m,
		logger:       logger.With(slog.String("component", "reconciler")),
		intake:       make(chan Event, 256),
		shutdownChan: make(chan struct{}),
	}
}

// Submit queues a feed event for reconciliation. It never blocks the feed
// consumers: when the intake buffer is full the event is dropped and
// counted, matching the drop-don't-stall contract of the granular channel.
func (r *Reconciler) Submit(ev Event) {
	select {
	case r.intake <- ev:
	default:
		r.countDrop("intake_full")
		r.logger.Warn("intake buffer full, dropping event")
	}
}

// Run consumes the intake channel until ctx is cancelled or Shutdown is
// called. It is the only goroutine that mutates fleet state.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		select {
		case ev := <-r.intake:
			r.Process(ev)
		case <-ctx.Done():
			logging.LogOperation(r.logger, "shutting_down_reconciler")
			return
		case <-r.shutdownChan:
			logging.LogOperation(r.logger, "shutting_down_reconciler")
			return
		}
	}
}

// Shutdown stops the Run loop.
func (r *Reconciler) Shutdown() {
	close(r.shutdownChan)
}

// Process applies one event and, if it was accepted, runs a reconciliation
// cycle. Call it only from the Run goroutine, or before Run starts (the
// bootstrap batch is applied this way).
func (r *Reconciler) Process(ev Event) {
	if r.apply(ev) {
		r.cycle()
	}
}

// apply validates and merges one event into the store. It returns false for
// malformed events, which are dropped silently apart from metrics and a
// debug log.
func (r *Reconciler) apply(ev Event) bool {
	switch {
	case ev.Location != nil:
		return r.applyLocation(*ev.Location)
	case ev.Status != nil:
		return r.applyStatus(*ev.Status)
	case ev.Snapshot != nil:
		return r.applySnapshot(*ev.Snapshot)
	default:
		return false
	}
}

func (r *Reconciler) applyLocation(update models.LocationUpdate) bool {
	if update.BusID == "" {
		r.countDrop("missing_id")
		r.logger.Debug("dropping location update without id")
		return false
	}
	if !geo.IsFiniteCoordinate(update.Lat) || !geo.IsFiniteCoordinate(update.Lon) {
		r.countDrop("invalid_coordinates")
		r.logger.Debug("dropping location update with invalid coordinates",
			slog.String("bus_id", update.BusID))
		return false
	}
	r.countEvent("granular")
	r.store.ApplyLocation(update)
	return true
}

func (r *Reconciler) applyStatus(update models.StatusUpdate) bool {
	if update.BusID == "" || update.Status == "" {
		r.countDrop("missing_id")
		r.logger.Debug("dropping malformed status update")
		return false
	}
	r.countEvent("granular")
	r.store.ApplyStatus(update)
	return true
}

func (r *Reconciler) applySnapshot(snapshot models.Snapshot) bool {
	r.countEvent("snapshot")
	r.store.ReplaceAll(snapshot.Buses)
	if snapshot.Routes != nil {
		r.routes.ReplaceAll(snapshot.Routes)
	}
	return true
}

// cycle rederives headings, rebuilds the spatial index over the displayable
// set, updates gauges, and broadcasts.
func (r *Reconciler) cycle() {
	all := r.store.All()
	headings := r.tracker.Derive(all)
	r.store.ApplyHeadings(headings)

	displayable := FilterDisplayable(r.store.All(), "")
	r.index.Rebuild(displayable)

	if r.metrics != nil {
		r.metrics.VehiclesTracked.Set(float64(len(all)))
		r.metrics.VehiclesDisplayable.Set(float64(len(displayable)))
	}

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(ToWireAll(displayable))
	}
}

func (r *Reconciler) countEvent(channel string) {
	if r.metrics != nil {
		r.metrics.FeedEventsTotal.WithLabelValues(channel).Inc()
	}
}

func (r *Reconciler) countDrop(reason string) {
	if r.metrics != nil {
		r.metrics.FeedEventsDropped.WithLabelValues(reason).Inc()
	}
}
