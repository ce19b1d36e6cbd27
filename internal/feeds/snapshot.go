package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/models"
)

// snapshotHTTPClient is a dedicated HTTP client for snapshot fetching,
// configured with explicit timeouts and transport limits to avoid the
// pitfalls of http.DefaultClient (no timeout, shared global state). The
// transport is cloned from http.DefaultTransport to preserve important
// defaults (ProxyFromEnvironment, DialContext, HTTP/2, keepalives).
var snapshotHTTPClient = newSnapshotHTTPClient()

func newSnapshotHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ExpectContinueTimeout = 1 * time.Second

	return &http.Client{
		// Safety net per request; refresh also sets a 15s context timeout
		// and the stricter of the two wins.
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}

// SnapshotPoller periodically fetches the realtime store's full export and
// submits it to the reconciler. A failed fetch leaves state untouched.
type SnapshotPoller struct {
	config     Config
	reconciler *fleet.Reconciler
	metrics    *metrics.Metrics
	logger     *slog.Logger

	shutdownChan chan struct{}
}

// NewSnapshotPoller creates a poller. metrics may be nil.
func NewSnapshotPoller(config Config, reconciler *fleet.Reconciler, m *metrics.Metrics, logger *slog.Logger) *SnapshotPoller {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotPoller{
		config:       config.withDefaults(),
		reconciler:   reconciler,
		metrics:      m,
		logger:       logger.With(slog.String("component", "snapshot_poller")),
		shutdownChan: make(chan struct{}),
	}
}

// Run polls on the configured interval until ctx is cancelled or Shutdown
// is called.
func (p *SnapshotPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh(ctx)
		case <-ctx.Done():
			logging.LogOperation(p.logger, "shutting_down_snapshot_poller")
			return
		case <-p.shutdownChan:
			logging.LogOperation(p.logger, "shutting_down_snapshot_poller")
			return
		}
	}
}

// Shutdown stops the Run loop.
func (p *SnapshotPoller) Shutdown() {
	close(p.shutdownChan)
}

// refresh performs one fetch-and-submit. Failures are logged and counted;
// the existing state is kept as-is.
func (p *SnapshotPoller) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	snapshot, err := FetchSnapshot(fetchCtx, p.config.SnapshotURL)
	if err != nil {
		if p.metrics != nil {
			p.metrics.SnapshotFailures.Inc()
		}
		logging.LogError(p.logger, "snapshot refresh failed, keeping existing state", err)
		return
	}

	p.reconciler.Submit(fleet.Event{Snapshot: snapshot})
	if p.metrics != nil {
		p.metrics.SnapshotRefreshes.Inc()
	}
	p.logger.Debug("snapshot refreshed",
		slog.Int("buses", len(snapshot.Buses)),
		slog.Int("routes", len(snapshot.Routes)))
}

// FetchSnapshot retrieves and decodes the full export from url.
func FetchSnapshot(ctx context.Context, url string) (*models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := snapshotHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute snapshot request: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "snapshot_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch failed: %s returned %s", url, resp.Status)
	}

	const maxBodySize = 25 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxBodySize {
		return nil, fmt.Errorf("snapshot response exceeds size limit of %d bytes", maxBodySize)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
