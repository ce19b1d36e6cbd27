package fleet

import (
	"sort"
	"sync"

	"tracker.ridelink.org/internal/models"
)

// RouteTable holds the route reference set carried by the snapshot channel.
// The reconciler replaces it on each snapshot; route search and the routes
// endpoint read it.
type RouteTable struct {
	mu     sync.RWMutex
	routes map[string]models.RouteDocument
	order  []string
}

// NewRouteTable creates an empty route table.
func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[string]models.RouteDocument)}
}

// ReplaceAll swaps in a new route set. Iteration order for All and Ordered
// is the sorted route ID order, which keeps tie-breaking in route search
// stable across snapshots.
func (rt *RouteTable) ReplaceAll(routes map[string]models.RouteDocument) {
	order := make([]string, 0, len(routes))
	for id := range routes {
		order = append(order, id)
	}
	sort.Strings(order)

	copied := make(map[string]models.RouteDocument, len(routes))
	for id, doc := range routes {
		copied[id] = doc
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes = copied
	rt.order = order
}

// Get returns the route document for id.
func (rt *RouteTable) Get(id string) (models.RouteDocument, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	doc, ok := rt.routes[id]
	return doc, ok
}

// Len returns the number of routes.
func (rt *RouteTable) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.routes)
}

// OrderedRoute pairs a route ID with its document in stable order.
type OrderedRoute struct {
	ID  string
	Doc models.RouteDocument
}

// Ordered returns all routes in stable ID order.
func (rt *RouteTable) Ordered() []OrderedRoute {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]OrderedRoute, 0, len(rt.order))
	for _, id := range rt.order {
		out = append(out, OrderedRoute{ID: id, Doc: rt.routes[id]})
	}
	return out
}

// All returns the client-facing route list in stable ID order.
func (rt *RouteTable) All() []models.Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]models.Route, 0, len(rt.order))
	for _, id := range rt.order {
		doc := rt.routes[id]
		out = append(out, models.Route{
			ID:    id,
			Name:  doc.Name,
			Start: doc.Start,
			End:   doc.End,
			Stops: len(doc.Stops),
		})
	}
	return out
}
