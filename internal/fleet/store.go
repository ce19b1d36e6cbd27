// Package fleet holds the live vehicle state: the reconciled store fed by
// the granular and snapshot channels, heading inference from successive
// positions, display filtering, and the spatial index for nearby queries.
package fleet

import (
	"math"
	"sort"
	"sync"
	"time"

	"tracker.ridelink.org/internal/clock"
	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

// Store is the in-memory vehicle state store. Writes come from the
// reconciler goroutine; the RWMutex lets API readers take consistent copies
// while updates are applied.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]models.VehicleState
	clock    clock.Clock
}

// NewStore creates an empty store using the given clock for update stamps.
func NewStore(clk clock.Clock) *Store {
	return &Store{
		vehicles: make(map[string]models.VehicleState),
		clock:    clk,
	}
}

// Get returns a copy of the state for id.
func (s *Store) Get(id string) (models.VehicleState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	return v, ok
}

// All returns copies of every vehicle, ordered by ID so repeated reads of
// unchanged state are identical.
func (s *Store) All() []models.VehicleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.VehicleState, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked vehicles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}

// ApplyLocation merges a granular position event. Only fields present in the
// event are written; absent optional fields keep their stored values. A
// vehicle first seen here is marked LiveOnly until a snapshot confirms it.
func (s *Store) ApplyLocation(update models.LocationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.vehicles[update.BusID]
	if !exists {
		v = models.VehicleState{
			ID:       update.BusID,
			Status:   models.StatusOffline,
			LiveOnly: true,
		}
	}

	v.Lat = update.Lat
	v.Lon = update.Lon
	if update.Passengers != nil {
		v.Passengers = *update.Passengers
	}
	if update.Status != nil {
		v.Status = *update.Status
	}
	if update.Bearing != nil {
		v.Heading = *update.Bearing
		v.HeadingAuthoritative = true
	}
	if update.Speed != nil {
		v.Speed = *update.Speed
	}
	if update.Timestamp > 0 {
		v.LastUpdatedAt = time.UnixMilli(update.Timestamp)
	} else {
		v.LastUpdatedAt = s.clock.Now()
	}
	v.Provenance = models.ProvenanceGranular

	s.vehicles[update.BusID] = v
}

// ApplyStatus merges a granular status-only event. Unknown vehicles are
// created so a later position event finds the right status in place.
func (s *Store) ApplyStatus(update models.StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.vehicles[update.BusID]
	if !exists {
		v = models.VehicleState{
			ID:       update.BusID,
			Lat:      math.NaN(),
			Lon:      math.NaN(),
			LiveOnly: true,
		}
	}
	v.Status = update.Status
	v.LastUpdatedAt = s.clock.Now()
	v.Provenance = models.ProvenanceGranular

	s.vehicles[update.BusID] = v
}

// ReplaceAll reconciles the store against a full snapshot. The snapshot is
// authoritative for the identifier universe, static reference fields, and
// status; live fields already in the store win over the snapshot's values.
// Vehicles absent from the snapshot are dropped unless they are LiveOnly.
// Applying the same snapshot twice with no intervening granular events is
// a no-op.
func (s *Store) ReplaceAll(buses map[string]models.BusDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]models.VehicleState, len(buses))

	for id, doc := range buses {
		if id == "" {
			continue
		}
		if existing, ok := s.vehicles[id]; ok {
			next[id] = mergeSnapshot(existing, doc)
		} else {
			next[id] = snapshotState(id, doc)
		}
	}

	// Vehicles only ever seen on the granular channel survive snapshot
	// replacement; everything else absent from the snapshot is dropped.
	for id, v := range s.vehicles {
		if _, inSnapshot := next[id]; !inSnapshot && v.LiveOnly {
			next[id] = v
		}
	}

	s.vehicles = next
}

// ApplyHeadings writes inferred headings and clears the per-cycle
// authoritative flags.
func (s *Store) ApplyHeadings(headings map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, heading := range headings {
		if v, ok := s.vehicles[id]; ok {
			v.Heading = heading
			s.vehicles[id] = v
		}
	}
	for id, v := range s.vehicles {
		if v.HeadingAuthoritative {
			v.HeadingAuthoritative = false
			s.vehicles[id] = v
		}
	}
}

// snapshotState builds a fresh state from a snapshot document.
func snapshotState(id string, doc models.BusDocument) models.VehicleState {
	lat, okLat := geo.ParseCoordinate(doc.Lat)
	lon, okLon := geo.ParseCoordinate(doc.Lon)
	if !okLat {
		lat = math.NaN()
	}
	if !okLon {
		lon = math.NaN()
	}

	v := models.VehicleState{
		ID:         id,
		RouteID:    doc.RouteID,
		Label:      doc.Name,
		Lat:        lat,
		Lon:        lon,
		Passengers: doc.Passengers,
		Status:     doc.Status,
		Provenance: models.ProvenanceSnapshot,
	}
	if doc.Bearing != nil {
		v.Heading = *doc.Bearing
	}
	if doc.Speed != nil {
		v.Speed = *doc.Speed
	}
	if doc.LastUpdated > 0 {
		v.LastUpdatedAt = time.UnixMilli(doc.LastUpdated)
	}
	return v
}

// mergeSnapshot reconciles a stored vehicle with its snapshot document.
// Static reference fields and status come from the snapshot; live fields
// (position, passengers, heading, speed) keep the stored value when one is
// present.
func mergeSnapshot(existing models.VehicleState, doc models.BusDocument) models.VehicleState {
	merged := existing
	merged.RouteID = doc.RouteID
	merged.Label = doc.Name
	merged.LiveOnly = false

	if !geo.IsFiniteCoordinate(existing.Lat) || !geo.IsFiniteCoordinate(existing.Lon) {
		if lat, ok := geo.ParseCoordinate(doc.Lat); ok {
			if lon, ok := geo.ParseCoordinate(doc.Lon); ok {
				merged.Lat = lat
				merged.Lon = lon
			}
		}
	}
	if existing.Passengers.IsZero() && !doc.Passengers.IsZero() {
		merged.Passengers = doc.Passengers
	}
	// Status is not a live field: the export knows when an operator marks a
	// vehicle offline, so the snapshot's status replaces the stored one. A
	// snapshot that omits status keeps the stored value.
	if doc.Status != "" {
		merged.Status = doc.Status
	}
	// Heading and speed count as live once a granular event has touched
	// the vehicle; before that the snapshot's values fill in.
	if existing.Provenance != models.ProvenanceGranular {
		if doc.Bearing != nil {
			merged.Heading = *doc.Bearing
		}
		if doc.Speed != nil {
			merged.Speed = *doc.Speed
		}
	}
	if existing.LastUpdatedAt.IsZero() && doc.LastUpdated > 0 {
		merged.LastUpdatedAt = time.UnixMilli(doc.LastUpdated)
	}
	return merged
}
