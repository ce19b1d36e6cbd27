// Package analytics records passenger-count observations into SQLite and
// serves the daily ridership aggregates behind the owner dashboard.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS passenger_observations (
	vehicle_id  TEXT    NOT NULL,
	route_id    TEXT    NOT NULL DEFAULT '',
	count       INTEGER NOT NULL,
	observed_at INTEGER NOT NULL,
	PRIMARY KEY (vehicle_id, observed_at)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_observations_observed_at
	ON passenger_observations (observed_at);
`

// Store persists passenger observations. The primary key dedupes repeated
// sightings of the same timestamped entry, so re-recording a vehicle's
// series after every cycle is cheap and idempotent.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the analytics database at dbPath.
// Use ":memory:" in tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open analytics DB: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to create analytics tables: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "analytics")),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection pool for health checks and the metrics
// collector.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Record stores one observation. Duplicate (vehicle, timestamp) pairs are
// ignored.
func (s *Store) Record(ctx context.Context, vehicleID, routeID string, obs models.PassengerObservation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passenger_observations (vehicle_id, route_id, count, observed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (vehicle_id, observed_at) DO NOTHING`,
		vehicleID, routeID, obs.Count, obs.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}

// RecordVehicle stores a vehicle's current passenger data: the full series
// when one is present, otherwise the scalar count stamped with the
// vehicle's last update time. Vehicles without passenger data or without an
// update time are skipped.
func (s *Store) RecordVehicle(ctx context.Context, v models.VehicleState) error {
	if v.Passengers.IsZero() {
		return nil
	}

	if series := v.Passengers.Series(); series != nil {
		for _, obs := range series {
			if err := s.Record(ctx, v.ID, v.RouteID, obs); err != nil {
				return err
			}
		}
		return nil
	}

	if v.LastUpdatedAt.IsZero() {
		return nil
	}
	return s.Record(ctx, v.ID, v.RouteID, models.PassengerObservation{
		Timestamp: v.LastUpdatedAt.UnixMilli(),
		Count:     v.Passengers.Latest(),
	})
}

// RouteRidership is the per-route slice of a daily summary.
type RouteRidership struct {
	RouteID      string `json:"routeId"`
	Observations int    `json:"observations"`
	PeakCount    int    `json:"peakCount"`
	TotalCount   int    `json:"totalCount"`
}

// DailySummary aggregates one UTC day of observations.
type DailySummary struct {
	Date           string           `json:"date"`
	Observations   int              `json:"observations"`
	PeakCount      int              `json:"peakCount"`
	ActiveVehicles int              `json:"activeVehicles"`
	Routes         []RouteRidership `json:"routes"`
}

// DailySummaryFor aggregates the observations recorded on the given UTC
// date (formatted 2006-01-02).
func (s *Store) DailySummaryFor(ctx context.Context, date string) (DailySummary, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return DailySummary{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	from := day.UnixMilli()
	to := day.Add(24 * time.Hour).UnixMilli()

	summary := DailySummary{Date: date, Routes: []RouteRidership{}}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(count), 0), COUNT(DISTINCT vehicle_id)
		 FROM passenger_observations
		 WHERE observed_at >= ? AND observed_at < ?`,
		from, to)
	if err := row.Scan(&summary.Observations, &summary.PeakCount, &summary.ActiveVehicles); err != nil {
		return DailySummary{}, fmt.Errorf("failed to aggregate daily summary: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT route_id, COUNT(*), MAX(count), SUM(count)
		 FROM passenger_observations
		 WHERE observed_at >= ? AND observed_at < ?
		 GROUP BY route_id
		 ORDER BY route_id`,
		from, to)
	if err != nil {
		return DailySummary{}, fmt.Errorf("failed to aggregate route ridership: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, s.logger, "ridership_rows")

	for rows.Next() {
		var r RouteRidership
		if err := rows.Scan(&r.RouteID, &r.Observations, &r.PeakCount, &r.TotalCount); err != nil {
			return DailySummary{}, fmt.Errorf("failed to scan route ridership: %w", err)
		}
		summary.Routes = append(summary.Routes, r)
	}
	if err := rows.Err(); err != nil {
		return DailySummary{}, err
	}

	return summary, nil
}
