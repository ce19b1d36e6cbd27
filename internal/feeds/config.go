// Package feeds connects the two inbound channels to the reconciler: the
// granular NATS push feed and the periodic full-snapshot HTTP poll.
package feeds

import "time"

// Default subjects and cadence for the feed layer.
const (
	DefaultLocationSubject  = "bus.location.update"
	DefaultStatusSubject    = "bus.status.update"
	DefaultSnapshotInterval = 30 * time.Second
)

// Config holds feed connection settings assembled from command-line flags.
type Config struct {
	// NATSURL is the granular-channel server; empty disables the consumer.
	NATSURL         string
	LocationSubject string
	StatusSubject   string

	// SnapshotURL is the realtime store's full JSON export; empty disables
	// the poller and bootstrap fetch.
	SnapshotURL      string
	SnapshotInterval time.Duration
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.LocationSubject == "" {
		c.LocationSubject = DefaultLocationSubject
	}
	if c.StatusSubject == "" {
		c.StatusSubject = DefaultStatusSubject
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = DefaultSnapshotInterval
	}
	return c
}
