// Package relay forwards normalized webhook events to Kafka so downstream
// consumers can react to inbound messages and delivery receipts without
// talking to the vendor themselves.
package relay

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// ProducerOption customises the producer during construction.
type ProducerOption func(*producerOptions)

type producerOptions struct {
	config *sarama.Config
}

// WithConfig supplies a preconfigured Sarama config.
func WithConfig(cfg *sarama.Config) ProducerOption {
	return func(o *producerOptions) {
		if cfg != nil {
			o.config = cfg
		}
	}
}

// Producer wraps a Sarama sync producer behind the publisher's SyncProducer
// interface. Publishes wait for broker acknowledgement so a relayed event is
// durable once PublishSync returns.
type Producer struct {
	logger       zerolog.Logger
	client       sarama.Client
	syncProducer sarama.SyncProducer
}

// NewProducer constructs a Producer for the supplied broker list.
func NewProducer(brokers []string, logger zerolog.Logger, opts ...ProducerOption) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("relay producer: at least one broker is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	settings := &producerOptions{config: defaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	client, err := sarama.NewClient(brokers, settings.config)
	if err != nil {
		return nil, fmt.Errorf("relay producer: create client: %w", err)
	}
	syncProd, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("relay producer: create sync producer: %w", err)
	}

	return &Producer{
		logger:       logger,
		client:       client,
		syncProducer: syncProd,
	}, nil
}

// PublishSync publishes a record and waits for broker acknowledgement.
func (p *Producer) PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error {
	if topic == "" {
		return errors.New("relay producer: topic is required")
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(payload),
		Headers: toRecordHeaders(headers),
	}
	if len(key) > 0 {
		msg.Key = sarama.ByteEncoder(key)
	}

	if _, _, err := p.syncProducer.SendMessage(msg); err != nil {
		return fmt.Errorf("relay producer: send sync: %w", err)
	}
	return nil
}

// Close releases the underlying Sarama producer and client.
func (p *Producer) Close() error {
	var errs []error
	if err := p.syncProducer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.client.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func defaultConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

func toRecordHeaders(headers map[string][]byte) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	out := make([]sarama.RecordHeader, 0, len(headers))
	for key, value := range headers {
		out = append(out, sarama.RecordHeader{Key: []byte(key), Value: value})
	}
	return out
}
