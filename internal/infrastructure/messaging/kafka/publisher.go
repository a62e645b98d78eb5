package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherMetrics counts publish outcomes.
type PublisherMetrics struct {
	Published atomic.Int64
	Failed    atomic.Int64
}

// Publisher sends mint lifecycle events to the broker.  It satisfies
// mint.EventPublisher; the coordinator treats publish failures as
// best-effort, so this type only reports them, never retries forever.
type Publisher struct {
	writer  WriterInterface
	source  string
	logger  logging.Logger
	closed  atomic.Bool
	metrics PublisherMetrics
}

var _ mint.EventPublisher = (*Publisher)(nil)

// NewPublisher builds a publisher over a hash-balanced writer.  The parcel
// fingerprint is the message key, which keeps all events for one parcel on
// one partition.
func NewPublisher(cfg config.KafkaConfig, source string, logger logging.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka brokers required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	return &Publisher{
		writer: writer,
		source: source,
		logger: logger.Named("kafka.publisher"),
	}, nil
}

// NewPublisherWithWriter is a constructor for tests.
func NewPublisherWithWriter(writer WriterInterface, source string, logger logging.Logger) *Publisher {
	return &Publisher{writer: writer, source: source, logger: logger}
}

// Publish sends one event to the topic named by its type.
func (p *Publisher) Publish(ctx context.Context, event mint.Event) error {
	if p.closed.Load() {
		return apperrors.New(apperrors.ErrCodeMessagingError, "publisher closed")
	}
	if event.Type == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "event type required")
	}

	env, err := NewEnvelope(p.source, event)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal event envelope")
	}

	msg := kafka.Message{
		Topic: string(event.Type),
		Key:   []byte(event.Fingerprint),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "source_service", Value: []byte(env.Source)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.Failed.Add(1)
		return apperrors.Wrapf(err, apperrors.ErrCodeMessagingError, "publish %s", event.Type)
	}

	p.metrics.Published.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", string(event.Type)),
		logging.String("fingerprint", event.Fingerprint),
	)
	return nil
}

// Metrics returns a snapshot of publish counters.
func (p *Publisher) Metrics() (published, failed int64) {
	return p.metrics.Published.Load(), p.metrics.Failed.Load()
}

// Close flushes and shuts down the writer.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka publisher closed", logging.Int64("published", p.metrics.Published.Load()))
	return err
}
