// Command import-routes converts a GTFS static feed into the route
// snapshot document the tracker serves. It picks the longest trip per
// route as the canonical stop sequence.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/models"
)

func main() {
	var (
		gtfsSource = flag.String("gtfs", "", "GTFS static feed: local zip path or URL")
		outPath    = flag.String("out", "routes.json", "Output path for the routes snapshot")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	logger := logging.NewLogger(*verbose)

	if *gtfsSource == "" {
		fmt.Fprintln(os.Stderr, "error: -gtfs is required")
		os.Exit(1)
	}

	if err := run(*gtfsSource, *outPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(gtfsSource, outPath string, logger *slog.Logger) error {
	b, err := readSource(gtfsSource)
	if err != nil {
		return fmt.Errorf("failed to read GTFS feed: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("failed to parse GTFS feed: %w", err)
	}

	routes := BuildRouteDocuments(staticData)
	logging.LogOperation(logger, "converted_routes",
		slog.Int("routes", len(routes)),
		slog.Int("trips", len(staticData.Trips)))

	snapshot := models.Snapshot{
		Buses:  map[string]models.BusDocument{},
		Routes: routes,
	}
	return writeSnapshot(outPath, snapshot)
}

func readSource(source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: 5 * time.Minute}
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("feed download returned %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

// BuildRouteDocuments converts parsed GTFS data into route documents. The
// trip with the most stop times becomes the route's stop sequence; its
// first and last stops become the route endpoints.
func BuildRouteDocuments(staticData *gtfs.Static) map[string]models.RouteDocument {
	longestTrip := make(map[string]*gtfs.ScheduledTrip)
	for i := range staticData.Trips {
		trip := &staticData.Trips[i]
		if trip.Route == nil || len(trip.StopTimes) == 0 {
			continue
		}
		current := longestTrip[trip.Route.Id]
		if current == nil || len(trip.StopTimes) > len(current.StopTimes) {
			longestTrip[trip.Route.Id] = trip
		}
	}

	docs := make(map[string]models.RouteDocument, len(staticData.Routes))
	for i := range staticData.Routes {
		route := &staticData.Routes[i]

		name := route.LongName
		if name == "" {
			name = route.ShortName
		}
		doc := models.RouteDocument{Name: name}

		if trip := longestTrip[route.Id]; trip != nil {
			for _, st := range trip.StopTimes {
				stop := st.Stop
				if stop == nil || stop.Latitude == nil || stop.Longitude == nil {
					continue
				}
				doc.Stops = append(doc.Stops, models.StopDocument{
					Name: stop.Name,
					Lat:  *stop.Latitude,
					Lon:  *stop.Longitude,
				})
			}
			if len(doc.Stops) > 0 {
				doc.Start = doc.Stops[0].Name
				doc.End = doc.Stops[len(doc.Stops)-1].Name
			}
		}

		// Routes without usable trips still get endpoints when the long
		// name follows the "A - B" convention.
		if doc.Start == "" {
			if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
				doc.Start = strings.TrimSpace(parts[0])
				doc.End = strings.TrimSpace(parts[1])
			}
		}

		docs[route.Id] = doc
	}
	return docs
}

func writeSnapshot(outPath string, snapshot models.Snapshot) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}
