package fleet

import (
	"math"
	"sort"
	"sync"

	"github.com/tidwall/rtree"

	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

// Index is an rtree over the displayable vehicle positions, rebuilt by the
// reconciler after each cycle and queried by the nearby-vehicles endpoint.
type Index struct {
	mu   sync.RWMutex
	tree rtree.RTreeG[models.VehicleState]
}

// NewIndex creates an empty spatial index.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild replaces the index contents with the given vehicles. Vehicles
// without finite coordinates are skipped.
func (ix *Index) Rebuild(vehicles []models.VehicleState) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.tree = rtree.RTreeG[models.VehicleState]{}
	for _, v := range vehicles {
		if !geo.IsFiniteCoordinate(v.Lat) || !geo.IsFiniteCoordinate(v.Lon) {
			continue
		}
		pt := [2]float64{v.Lon, v.Lat}
		ix.tree.Insert(pt, pt, v)
	}
}

// Len returns the number of indexed vehicles.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Len()
}

// Nearby returns vehicles within radiusMeters of the given point, closest
// first. The rtree narrows candidates with a bounding box; exact distances
// are then checked with the haversine formula.
func (ix *Index) Nearby(lat, lon, radiusMeters float64) []models.Vehicle {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	latOffset := radiusMeters / 111320.0
	lonDenom := 111320.0 * math.Cos(lat*math.Pi/180)
	lonOffset := latOffset
	if lonDenom > 1 {
		lonOffset = radiusMeters / lonDenom
	}

	type hit struct {
		vehicle  models.VehicleState
		distance float64
	}
	var hits []hit

	ix.tree.Search(
		[2]float64{lon - lonOffset, lat - latOffset},
		[2]float64{lon + lonOffset, lat + latOffset},
		func(min, max [2]float64, v models.VehicleState) bool {
			d := geo.Distance(lat, lon, v.Lat, v.Lon)
			if d <= radiusMeters {
				hits = append(hits, hit{vehicle: v, distance: d})
			}
			return true
		},
	)

	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	out := make([]models.Vehicle, 0, len(hits))
	for _, h := range hits {
		wire := ToWire(h.vehicle)
		d := h.distance
		wire.DistanceMeters = &d
		out = append(out, wire)
	}
	return out
}
