package models

import (
	"time"
)

// Vehicle status values used by the feeds.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Provenance records which feed last touched a vehicle.
type Provenance string

const (
	ProvenanceGranular Provenance = "granular"
	ProvenanceSnapshot Provenance = "snapshot"
)

// VehicleState is the reconciled in-memory record for one vehicle. It is a
// value type; the store hands out copies so readers never see a partially
// applied update.
type VehicleState struct {
	ID         string
	RouteID    string
	Label      string
	Lat        float64
	Lon        float64
	Heading    float64
	Speed      float64
	Passengers PassengerCount
	Status     string
	Provenance Provenance
	// LastUpdatedAt is the time of the most recent feed touch; the zero
	// value means the feed never supplied one.
	LastUpdatedAt time.Time
	// LiveOnly marks vehicles that have only ever been seen on the
	// granular channel. They survive snapshot replacement.
	LiveOnly bool
	// HeadingAuthoritative is set when the most recent granular update
	// carried an explicit heading; direction inference skips the vehicle
	// for that cycle.
	HeadingAuthoritative bool
}

// Vehicle is the JSON shape served to API and WebSocket clients. Lat and
// Lon are pointers because a stored vehicle may have no position yet (a
// status-only event creates one with NaN coordinates); the wire shape
// carries null instead, which the JSON encoder can actually emit.
type Vehicle struct {
	ID             string   `json:"vehicleId"`
	RouteID        string   `json:"routeId,omitempty"`
	Label          string   `json:"label,omitempty"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	Heading        float64  `json:"heading"`
	Direction      string   `json:"direction"`
	Speed          float64  `json:"speed"`
	Passengers     int      `json:"passengers"`
	Status         string   `json:"status"`
	LastUpdateTime int64    `json:"lastUpdateTime"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}

// VehicleListData is the payload for vehicle list responses.
type VehicleListData struct {
	Count    int       `json:"count"`
	Vehicles []Vehicle `json:"vehicles"`
}

// NewVehicleListData wraps a vehicle slice, normalizing nil to an empty
// list so clients always see an array.
func NewVehicleListData(vehicles []Vehicle) VehicleListData {
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	return VehicleListData{Count: len(vehicles), Vehicles: vehicles}
}

// PositionSample is the single retained prior position used for heading
// inference. Exactly one sample is kept per vehicle.
type PositionSample struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
}
