package routematch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twpayne/go-polyline"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/geo"
	"tracker.ridelink.org/internal/models"
)

// Result statuses. Geocoding failures surface as StatusError; an empty
// candidate set is StatusNotFound.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Endpoint match scores, highest first. A route qualifying only through the
// combined-name fallback scores zero but still qualifies.
const (
	scoreExactInOrder     = 3
	scoreExactReversed    = 2
	scoreSubstringInOrder = 2
	scoreSubstringReverse = 1
)

// Result is the tagged outcome of a route search.
type Result struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Route   *MatchedRoute `json:"route,omitempty"`
}

// MatchedRoute is the winning route with its drawable path.
type MatchedRoute struct {
	RouteID    string  `json:"routeId"`
	Name       string  `json:"routeName"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Score      int     `json:"score"`
	StartPoint Point   `json:"startPoint"`
	EndPoint   Point   `json:"endPoint"`
	Path       []Point `json:"path"`
	Polyline   string  `json:"polyline"`
}

// Matcher scores the route table against free-text endpoints.
type Matcher struct {
	routes   *fleet.RouteTable
	geocoder *Geocoder
	roads    *RoadClient
	logger   *slog.Logger
}

// NewMatcher wires a matcher to the route table and the external services
// it consults. roads may be nil to disable road geometry.
func NewMatcher(routes *fleet.RouteTable, geocoder *Geocoder, roads *RoadClient, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		routes:   routes,
		geocoder: geocoder,
		roads:    roads,
		logger:   logger.With(slog.String("component", "route_matcher")),
	}
}

// Search finds the best route between the given endpoints. startText may be
// empty when startCoords is provided (the "my location" flow); endpoint
// matching then treats the start as a wildcard.
func (m *Matcher) Search(ctx context.Context, startText, endText string, startCoords *Point) Result {
	endText = strings.TrimSpace(endText)
	startText = strings.TrimSpace(startText)

	if endText == "" {
		return Result{Status: StatusError, Message: "destination is required"}
	}
	if startText == "" && startCoords == nil {
		return Result{Status: StatusError, Message: "start is required"}
	}

	best, ok := m.bestMatch(startText, endText)
	if !ok {
		return Result{
			Status:  StatusNotFound,
			Message: fmt.Sprintf("no route found between %q and %q", startText, endText),
		}
	}

	var startPoint Point
	if startCoords != nil {
		startPoint = *startCoords
	} else {
		p, err := m.geocoder.Geocode(ctx, startText)
		if err != nil {
			return Result{Status: StatusError, Message: fmt.Sprintf("could not locate %q", startText)}
		}
		startPoint = p
	}

	endPoint, err := m.geocoder.Geocode(ctx, endText)
	if err != nil {
		return Result{Status: StatusError, Message: fmt.Sprintf("could not locate %q", endText)}
	}

	path := m.buildPath(ctx, best.Doc, startPoint, endPoint)

	matched := &MatchedRoute{
		RouteID:    best.ID,
		Name:       best.Doc.Name,
		Start:      best.Doc.Start,
		End:        best.Doc.End,
		Score:      best.score,
		StartPoint: startPoint,
		EndPoint:   endPoint,
		Path:       path,
		Polyline:   encodePath(path),
	}
	return Result{Status: StatusSuccess, Route: matched}
}

type scoredRoute struct {
	fleet.OrderedRoute
	score int
}

// bestMatch scores every route and returns the highest scorer. Ties resolve
// to the earliest route in the table's stable order.
func (m *Matcher) bestMatch(startText, endText string) (scoredRoute, bool) {
	var best scoredRoute
	found := false

	for _, route := range m.routes.Ordered() {
		score, qualifies := scoreRoute(route.Doc, startText, endText)
		if !qualifies {
			continue
		}
		if !found || score > best.score {
			best = scoredRoute{OrderedRoute: route, score: score}
			found = true
		}
	}
	return best, found
}

// scoreRoute applies the endpoint matching rules. An empty start acts as a
// wildcard that satisfies both exact and substring checks.
func scoreRoute(doc models.RouteDocument, startText, endText string) (int, bool) {
	routeStart := normalize(doc.Start)
	routeEnd := normalize(doc.End)
	start := normalize(startText)
	end := normalize(endText)

	startExact := start == "" || routeStart == start
	endExact := routeEnd == end
	startExactRev := start == "" || routeEnd == start
	endExactRev := routeStart == end

	startSub := start == "" || strings.Contains(routeStart, start)
	endSub := strings.Contains(routeEnd, end)
	startSubRev := start == "" || strings.Contains(routeEnd, start)
	endSubRev := strings.Contains(routeStart, end)

	switch {
	case startExact && endExact:
		return scoreExactInOrder, true
	case startExactRev && endExactRev:
		return scoreExactReversed, true
	case startSub && endSub:
		return scoreSubstringInOrder, true
	case startSubRev && endSubRev:
		return scoreSubstringReverse, true
	}

	// Fallback: the combined route name mentions both endpoints.
	name := normalize(doc.Name)
	if strings.Contains(name, end) && (start == "" || strings.Contains(name, start)) {
		return 0, true
	}
	return 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// buildPath prefers the route's ordered stop sequence when at least two
// stops have usable coordinates. Otherwise it attempts road geometry
// between the endpoints and falls back to the straight segment.
func (m *Matcher) buildPath(ctx context.Context, doc models.RouteDocument, start, end Point) []Point {
	stops := make([]Point, 0, len(doc.Stops))
	for _, stop := range doc.Stops {
		lat, okLat := geo.ParseCoordinate(stop.Lat)
		lon, okLon := geo.ParseCoordinate(stop.Lon)
		if okLat && okLon {
			stops = append(stops, Point{Lat: lat, Lon: lon})
		}
	}
	if len(stops) >= 2 {
		return stops
	}

	if m.roads != nil {
		if road, err := m.roads.Geometry(ctx, start, end); err == nil {
			return road
		} else {
			m.logger.Debug("road geometry unavailable, using straight segment",
				slog.Any("error", err))
		}
	}
	return []Point{start, end}
}

func encodePath(path []Point) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
