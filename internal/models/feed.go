package models

// LocationUpdate is a granular-channel position event. Pointer fields are
// optional on the wire; absent fields leave the stored value untouched.
type LocationUpdate struct {
	BusID      string          `json:"busId"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Passengers *PassengerCount `json:"passengers,omitempty"`
	Status     *string         `json:"status,omitempty"`
	Bearing    *float64        `json:"bearing,omitempty"`
	Speed      *float64        `json:"speed,omitempty"`
	Timestamp  int64           `json:"timestamp,omitempty"`
}

// StatusUpdate is a granular-channel status-only event.
type StatusUpdate struct {
	BusID  string `json:"busId"`
	Status string `json:"status"`
}

// BusDocument is one vehicle record in the full-snapshot export.
// Coordinates are `any` because the store serves them as numbers or strings
// depending on how they were written.
type BusDocument struct {
	RouteID     string         `json:"routeId"`
	Name        string         `json:"name"`
	Lat         any            `json:"lat"`
	Lon         any            `json:"lon"`
	Bearing     *float64       `json:"bearing,omitempty"`
	Speed       *float64       `json:"speed,omitempty"`
	Passengers  PassengerCount `json:"passengers"`
	Status      string         `json:"status"`
	LastUpdated int64          `json:"lastUpdated,omitempty"`
}

// StopDocument is one stop along a route in the snapshot export.
type StopDocument struct {
	Name string `json:"name"`
	Lat  any    `json:"lat"`
	Lon  any    `json:"lon"`
}

// RouteDocument is one route record in the snapshot export.
type RouteDocument struct {
	Name  string         `json:"routeName"`
	Start string         `json:"start"`
	End   string         `json:"end"`
	Stops []StopDocument `json:"stops,omitempty"`
}

// Snapshot is the complete export of the realtime store: the authoritative
// identifier universe for vehicles plus the route reference set.
type Snapshot struct {
	Buses  map[string]BusDocument   `json:"buses"`
	Routes map[string]RouteDocument `json:"routes"`
}

// Route is the JSON shape served by the routes endpoint.
type Route struct {
	ID    string `json:"routeId"`
	Name  string `json:"routeName"`
	Start string `json:"start"`
	End   string `json:"end"`
	Stops int    `json:"stopCount"`
}
