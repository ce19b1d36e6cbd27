// Package routematch answers free-text "from here to there" queries against
// the route reference set: it geocodes the endpoints, scores routes by
// bidirectional endpoint matching, and builds a drawable path for the
// winner.
package routematch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tracker.ridelink.org/internal/logging"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// geocodeHTTPClient is shared by the geocoder and the road client; cloned
// from http.DefaultTransport with explicit timeouts, like the feed clients.
var geocodeHTTPClient = newGeocodeHTTPClient()

func newGeocodeHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 20
	transport.MaxIdleConnsPerHost = 5
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves free-text place names through a Nominatim instance.
type Geocoder struct {
	baseURL string
	logger  *slog.Logger
}

// NewGeocoder creates a geocoder against baseURL, or the public Nominatim
// instance when empty.
func NewGeocoder(baseURL string, logger *slog.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = defaultNominatimBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Geocoder{
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "geocoder")),
	}
}

// nominatimResult is the subset of the jsonv2 search response we read.
// Nominatim serves coordinates as strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves query to a coordinate using the first search result.
func (g *Geocoder) Geocode(ctx context.Context, query string) (Point, error) {
	endpoint := fmt.Sprintf("%s/search?format=jsonv2&limit=1&q=%s", g.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Point{}, err
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "ridelink-tracker/1.0")

	resp, err := geocodeHTTPClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, g.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode failed: %s returned %s", g.baseURL, resp.Status)
	}

	const maxBodySize = 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Point{}, fmt.Errorf("failed to read geocode response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Point{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return Point{}, fmt.Errorf("no geocoding result for %q", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad latitude in geocode result: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad longitude in geocode result: %w", err)
	}

	g.logger.Debug("geocoded place",
		slog.String("query", query),
		slog.String("resolved", results[0].DisplayName))

	return Point{Lat: lat, Lon: lon}, nil
}
