package routematch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"tracker.ridelink.org/internal/logging"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

// RoadClient fetches driving geometry between two points from an OSRM
// instance. Failures are expected and non-fatal; callers fall back to a
// straight segment.
type RoadClient struct {
	baseURL string
	logger  *slog.Logger
}

// NewRoadClient creates a client against baseURL, or the public OSRM demo
// server when empty.
func NewRoadClient(baseURL string, logger *slog.Logger) *RoadClient {
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoadClient{
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "road_client")),
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			// GeoJSON order: [lon, lat]
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Geometry returns the road path from a to b as an ordered point list.
func (r *RoadClient) Geometry(ctx context.Context, a, b Point) ([]Point, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		r.baseURL, a.Lon, a.Lat, b.Lon, b.Lat)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := geocodeHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("road geometry request failed: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, r.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("road geometry failed: %s returned %s", r.baseURL, resp.Status)
	}

	const maxBodySize = 5 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read road geometry response: %w", err)
	}

	var decoded osrmResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode road geometry response: %w", err)
	}
	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("no road geometry between points (code %q)", decoded.Code)
	}

	coords := decoded.Routes[0].Geometry.Coordinates
	points := make([]Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		points = append(points, Point{Lat: c[1], Lon: c[0]})
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("road geometry has too few points")
	}
	return points, nil
}
