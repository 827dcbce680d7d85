package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/whatsapp-cloud/webhook"
)

var errProducerNotInitialised = errors.New("relay publisher: producer not initialised")

// SyncProducer captures the subset of producer behaviour the publisher needs.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// EventPublisher writes normalized webhook events to a Kafka topic, one
// record per event, keyed by the event's message or status id so records for
// one message land on one partition. Error events carry no natural id and
// get a fresh UUID key instead.
type EventPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewEventPublisher constructs an EventPublisher instance.
func NewEventPublisher(prod SyncProducer, topic string, logger zerolog.Logger) (*EventPublisher, error) {
	if prod == nil {
		return nil, errProducerNotInitialised
	}
	if topic == "" {
		return nil, errors.New("relay publisher: topic is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &EventPublisher{
		producer: prod,
		topic:    topic,
		logger:   logger,
	}, nil
}

// PublishEvents relays each event in order, stopping at the first failure so
// the caller can decide whether to retry the delivery as a whole.
func (p *EventPublisher) PublishEvents(_ context.Context, events []webhook.Event) error {
	for _, event := range events {
		if err := p.publishOne(event); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventPublisher) publishOne(event webhook.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("relay publisher: marshal event: %w", err)
	}

	key := event.ID()
	if key == "" {
		key = uuid.NewString()
	}
	headers := map[string][]byte{
		"content-type": []byte("application/json"),
		"event-kind":   []byte(event.Kind),
	}

	if err := p.producer.PublishSync(p.topic, []byte(key), headers, payload); err != nil {
		return fmt.Errorf("relay publisher: publish event: %w", err)
	}

	p.logger.Debug().
		Str("kind", string(event.Kind)).
		Str("key", key).
		Msg("relay publisher: event relayed")
	return nil
}
