package services

import (
	"encoding/json"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/metrics"

	"github.com/sirupsen/logrus"
)

// EventsExchange is the topic exchange catalogue events are published to.
const EventsExchange = "gametrove.events"

// Routing keys of published events.
const (
	EventGameCreated      = "game.created"
	EventGameUpdated      = "game.updated"
	EventGameDeleted      = "game.deleted"
	EventGameOwned        = "ledger.owned"
	EventGameWishlisted   = "ledger.wishlisted"
	EventGameUnowned      = "ledger.unowned"
	EventGameUnwishlisted = "ledger.unwishlisted"
	EventReviewCreated    = "review.created"
	EventUserRegistered   = "user.registered"
)

// EventPublisher is satisfied by the RabbitMQ client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CatalogueEvent is the JSON body of every published event.
type CatalogueEvent struct {
	Type   string    `json:"type"`
	GameID uint      `json:"gameId,omitempty"`
	UserID uint      `json:"userId,omitempty"`
	At     time.Time `json:"at"`
}

// Option configures the optional collaborators of a service.
type Option func(*base)

// WithEvents publishes domain events after each successful mutation.
func WithEvents(p EventPublisher) Option {
	return func(b *base) { b.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

func WithLogger(l *logrus.Logger) Option {
	return func(b *base) { b.log = l }
}

// base holds what every service shares. A zero base logs to the standard
// logrus logger and publishes nothing.
type base struct {
	events  EventPublisher
	metrics *metrics.Metrics
	log     *logrus.Logger
}

func newBase(opts []Option) base {
	b := base{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// publish sends an event after the write it describes has committed.
// Failures are logged and never undo the write.
func (b *base) publish(routingKey string, gameID, userID uint) {
	if b.events == nil {
		return
	}
	body, err := json.Marshal(CatalogueEvent{Type: routingKey, GameID: gameID, UserID: userID, At: time.Now().UTC()})
	if err != nil {
		b.log.WithError(err).Error("failed to marshal event")
		return
	}
	if err := b.events.Publish(EventsExchange, routingKey, body); err != nil {
		b.log.WithError(err).WithField("event", routingKey).Warn("failed to publish event")
		return
	}
	b.log.WithFields(logrus.Fields{"event": routingKey, "game_id": gameID, "user_id": userID}).Debug("event published")
}
