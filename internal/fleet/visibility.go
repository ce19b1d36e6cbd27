package fleet

import (
	"strings"

	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

// Displayable reports whether a vehicle should be shown to clients: both
// coordinates finite and the vehicle online.
func Displayable(v models.VehicleState) bool {
	return geo.IsFiniteCoordinate(v.Lat) &&
		geo.IsFiniteCoordinate(v.Lon) &&
		v.Status == models.StatusOnline
}

// FilterDisplayable returns the displayable subset of vehicles, optionally
// restricted to a route. Route IDs are compared after trimming whitespace;
// an empty routeID applies no restriction.
func FilterDisplayable(vehicles []models.VehicleState, routeID string) []models.VehicleState {
	want := strings.TrimSpace(routeID)
	out := make([]models.VehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		if !Displayable(v) {
			continue
		}
		if want != "" && strings.TrimSpace(v.RouteID) != want {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ToWire converts a vehicle state to its client-facing JSON shape. Heading
// and speed are always set; absent feed values surface as 0. A vehicle
// without a finite position (created by a status-only event, or a snapshot
// document with unparseable coordinates) serializes with null coordinates;
// NaN must never reach the JSON encoder.
func ToWire(v models.VehicleState) models.Vehicle {
	var lastUpdate int64
	if !v.LastUpdatedAt.IsZero() {
		lastUpdate = v.LastUpdatedAt.UnixMilli()
	}
	wire := models.Vehicle{
		ID:             v.ID,
		RouteID:        v.RouteID,
		Label:          v.Label,
		Heading:        v.Heading,
		Direction:      geo.Cardinal(v.Heading),
		Speed:          v.Speed,
		Passengers:     v.Passengers.Latest(),
		Status:         v.Status,
		LastUpdateTime: lastUpdate,
	}
	if geo.IsFiniteCoordinate(v.Lat) && geo.IsFiniteCoordinate(v.Lon) {
		lat, lon := v.Lat, v.Lon
		wire.Lat = &lat
		wire.Lon = &lon
	}
	return wire
}

// ToWireAll converts a slice of vehicle states, preserving order.
func ToWireAll(vehicles []models.VehicleState) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, ToWire(v))
	}
	return out
}
