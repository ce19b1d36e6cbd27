package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker.ridelink.org/internal/appconf"
	"tracker.ridelink.org/internal/feeds"
	"tracker.ridelink.org/internal/logging"
)

func main() {
	var (
		port             = flag.Int("port", 4000, "API server port")
		env              = flag.String("env", "development", "Environment (development|test|production)")
		apiKeys          = flag.String("api-keys", "", "Comma-separated API keys; empty disables auth")
		verbose          = flag.Bool("verbose", false, "Enable debug logging")
		rateLimit        = flag.Int("rate-limit", 100, "Requests per second per API key")
		natsURL          = flag.String("nats-url", "", "NATS server URL for the granular feed; empty disables it")
		locationSubject  = flag.String("location-subject", feeds.DefaultLocationSubject, "NATS subject for location updates")
		statusSubject    = flag.String("status-subject", feeds.DefaultStatusSubject, "NATS subject for status updates")
		snapshotURL      = flag.String("snapshot-url", "", "Full-snapshot export URL; empty disables polling")
		snapshotInterval = flag.Duration("snapshot-interval", feeds.DefaultSnapshotInterval, "Snapshot poll interval")
		analyticsDBPath  = flag.String("analytics-db", "./tracker_analytics.db", "SQLite path for ridership analytics")
		nominatimURL     = flag.String("nominatim-url", "", "Nominatim base URL; empty uses the public instance")
		osrmURL          = flag.String("osrm-url", "", "OSRM base URL; empty uses the public instance")
	)
	flag.Parse()

	cfg := appconf.Config{
		Port:      *port,
		Env:       appconf.EnvFlagToEnvironment(*env),
		ApiKeys:   ParseAPIKeys(*apiKeys),
		Verbose:   *verbose,
		RateLimit: *rateLimit,
	}
	feedCfg := feeds.Config{
		NATSURL:          *natsURL,
		LocationSubject:  *locationSubject,
		StatusSubject:    *statusSubject,
		SnapshotURL:      *snapshotURL,
		SnapshotInterval: *snapshotInterval,
	}
	svcCfg := ServiceConfig{
		AnalyticsDBPath: *analyticsDBPath,
		NominatimURL:    *nominatimURL,
		OSRMURL:         *osrmURL,
	}

	if err := run(cfg, feedCfg, svcCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg appconf.Config, feedCfg feeds.Config, svcCfg ServiceConfig) error {
	coreApp, err := BuildApplication(cfg, feedCfg, svcCfg)
	if err != nil {
		return err
	}
	logger := coreApp.Logger
	defer coreApp.Metrics.Shutdown()
	defer logging.SafeCloseWithLogging(coreApp.Analytics, logger, "analytics_store")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Seed state from the snapshot export before serving traffic. A failed
	// bootstrap is not fatal; the poller retries on its cadence.
	if feedCfg.SnapshotURL != "" {
		if err := feeds.Bootstrap(ctx, feedCfg, coreApp.Reconciler, logger); err != nil {
			logging.LogError(logger, "snapshot bootstrap failed, starting empty", err)
		}
	}

	go coreApp.Reconciler.Run(ctx)
	defer coreApp.Hub.Close()

	if feedCfg.SnapshotURL != "" {
		poller := feeds.NewSnapshotPoller(feedCfg, coreApp.Reconciler, coreApp.Metrics, logger)
		go poller.Run(ctx)
		defer poller.Shutdown()
	}

	if feedCfg.NATSURL != "" {
		consumer := feeds.NewGranularConsumer(feedCfg, coreApp.Reconciler, logger)
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("failed to start granular feed consumer: %w", err)
		}
		defer consumer.Stop()
	}

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	serverErrors := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "starting_server",
			slog.Int("port", cfg.Port),
			slog.String("env", cfg.Env.String()))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logging.LogOperation(logger, "shutdown_signal_received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
