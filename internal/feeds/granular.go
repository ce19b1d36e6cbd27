package feeds

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"tracker.ridelink.org/internal/fleet"
	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/models"
)

// GranularConsumer subscribes to the granular-channel subjects and forwards
// decoded events to the reconciler. Messages that fail to decode are dropped
// here; semantic validation (missing ids, bad coordinates) happens in the
// reconciler so both feed paths share it.
type GranularConsumer struct {
	config     Config
	reconciler *fleet.Reconciler
	logger     *slog.Logger

	conn *nats.Conn
	subs []*nats.Subscription
}

// NewGranularConsumer creates a consumer for the configured subjects.
func NewGranularConsumer(config Config, reconciler *fleet.Reconciler, logger *slog.Logger) *GranularConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GranularConsumer{
		config:     config.withDefaults(),
		reconciler: reconciler,
		logger:     logger.With(slog.String("component", "granular_consumer")),
	}
}

// Start connects to NATS and subscribes to both subjects. The connection
// reconnects automatically; while it is down, state is simply not updated.
func (c *GranularConsumer) Start() error {
	conn, err := nats.Connect(c.config.NATSURL,
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.LogError(c.logger, "granular channel disconnected", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logging.LogOperation(c.logger, "granular_channel_reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to granular channel: %w", err)
	}
	c.conn = conn

	locationSub, err := conn.Subscribe(c.config.LocationSubject, func(msg *nats.Msg) {
		c.handleLocationMessage(msg.Data)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", c.config.LocationSubject, err)
	}

	statusSub, err := conn.Subscribe(c.config.StatusSubject, func(msg *nats.Msg) {
		c.handleStatusMessage(msg.Data)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", c.config.StatusSubject, err)
	}

	c.subs = []*nats.Subscription{locationSub, statusSub}
	logging.LogOperation(c.logger, "granular_consumer_started",
		slog.String("location_subject", c.config.LocationSubject),
		slog.String("status_subject", c.config.StatusSubject))
	return nil
}

// Stop drains the subscriptions and closes the connection.
func (c *GranularConsumer) Stop() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *GranularConsumer) handleLocationMessage(data []byte) {
	var update models.LocationUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		c.logger.Debug("dropping undecodable location message", slog.Any("error", err))
		return
	}
	c.reconciler.Submit(fleet.Event{Location: &update})
}

func (c *GranularConsumer) handleStatusMessage(data []byte) {
	var update models.StatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		c.logger.Debug("dropping undecodable status message", slog.Any("error", err))
		return
	}
	c.reconciler.Submit(fleet.Event{Status: &update})
}
