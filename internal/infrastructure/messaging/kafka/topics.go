// Package kafka carries mint lifecycle events between the API server and
// the reconciliation worker.  Each terminal mint outcome is published to its
// own topic; messages are keyed by parcel fingerprint so every event for a
// given parcel lands on the same partition, in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// Topic names match the event types one to one.
const (
	TopicMintSucceeded = string(mint.EventMintSucceeded)
	TopicMintFailed    = string(mint.EventMintFailed)
	TopicMintReconcile = string(mint.EventMintReconcile)
)

// Envelope wraps every message on the wire with identity and provenance so
// consumers can dedupe and trace without decoding the payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a mint event for publishing.
func NewEnvelope(source string, event mint.Event) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal mint event")
	}
	return &Envelope{
		EventID:       uuid.NewString(),
		EventType:     string(event.Type),
		Source:        source,
		Timestamp:     event.OccurredAt,
		SchemaVersion: "v1",
		Payload:       payload,
	}, nil
}

// DecodeEvent unpacks the wrapped mint event.
func (e *Envelope) DecodeEvent() (mint.Event, error) {
	var event mint.Event
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return mint.Event{}, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal mint event payload")
	}
	return event, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the mint topics at startup so the worker never joins
// a group on a topic that does not exist yet.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeMessagingError, "dial kafka broker %s", brokers[0])
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// CreateTopic is idempotent: an already existing topic is not an error.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg kafka.TopicConfig) error {
	if cfg.Topic == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "topic name required")
	}
	if err := m.conn.CreateTopics(cfg); err != nil {
		if exists, _ := m.TopicExists(ctx, cfg.Topic); exists {
			return nil
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeMessagingError, "create topic %s", cfg.Topic)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Topic))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureMintTopics creates every mint lifecycle topic.
func (m *TopicManager) EnsureMintTopics(ctx context.Context) error {
	for _, cfg := range DefaultTopics() {
		if err := m.CreateTopic(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics lists the mint topics with single-broker friendly settings.
// Production clusters override partition and replication counts broker-side.
func DefaultTopics() []kafka.TopicConfig {
	const (
		weekMs  = 7 * 24 * 3600 * 1000
		monthMs = 30 * 24 * 3600 * 1000
	)
	retention := func(ms int) []kafka.ConfigEntry {
		return []kafka.ConfigEntry{{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", ms)}}
	}
	return []kafka.TopicConfig{
		{Topic: TopicMintSucceeded, NumPartitions: 6, ReplicationFactor: 1, ConfigEntries: retention(weekMs)},
		{Topic: TopicMintFailed, NumPartitions: 6, ReplicationFactor: 1, ConfigEntries: retention(weekMs)},
		// Reconcile events represent money at risk and are kept longer.
		{Topic: TopicMintReconcile, NumPartitions: 3, ReplicationFactor: 1, ConfigEntries: retention(monthMs)},
	}
}
