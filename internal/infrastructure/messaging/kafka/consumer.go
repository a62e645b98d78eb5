package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// EventHandler processes one decoded mint event.  Returning an error triggers
// the retry policy; after retries are exhausted the message is logged and
// skipped so one poison message cannot stall the partition.
type EventHandler func(ctx context.Context, event mint.Event) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerMetrics counts consume outcomes.
type ConsumerMetrics struct {
	Consumed  atomic.Int64
	Processed atomic.Int64
	Failed    atomic.Int64
	Retried   atomic.Int64
	Skipped   atomic.Int64
}

// RetryPolicy bounds per-message processing retries.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = time.Second
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	return p
}

// Consumer reads mint lifecycle events for the reconciliation worker.  It
// joins a consumer group over the registered topics and commits offsets only
// after a message is handled or deliberately skipped.
type Consumer struct {
	reader ReaderInterface
	retry  RetryPolicy
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]EventHandler

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	metrics ConsumerMetrics
}

// NewConsumer builds a group consumer over the given topics.
func NewConsumer(cfg config.KafkaConfig, topics []string, retry RetryPolicy, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.ConsumerGroup == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka consumer group required")
	}
	if len(topics) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "at least one topic required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.ConsumerGroup,
		GroupTopics:       topics,
		MinBytes:          1,
		MaxBytes:          10 * 1024 * 1024,
		MaxWait:           5 * time.Second,
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		StartOffset:       kafka.FirstOffset,
	})

	return &Consumer{
		reader:   reader,
		retry:    retry.withDefaults(),
		logger:   logger.Named("kafka.consumer"),
		handlers: make(map[string]EventHandler),
	}, nil
}

// NewConsumerWithReader is a constructor for tests.
func NewConsumerWithReader(reader ReaderInterface, retry RetryPolicy, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		retry:    retry.withDefaults(),
		logger:   logger,
		handlers: make(map[string]EventHandler),
	}
}

// Handle registers the handler for a topic.  Messages on topics without a
// handler are committed and skipped.
func (c *Consumer) Handle(topic string, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start launches the consume loop.  It returns immediately; Close stops the
// loop and waits for it.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return apperrors.New(apperrors.ErrCodeConflict, "consumer already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			time.Sleep(time.Second)
			continue
		}

		c.metrics.Consumed.Add(1)

		c.mu.RLock()
		handler, ok := c.handlers[msg.Topic]
		c.mu.RUnlock()

		if !ok {
			c.metrics.Skipped.Add(1)
			c.commit(ctx, msg)
			continue
		}

		event, err := decodeMessage(msg)
		if err != nil {
			// A message that cannot be decoded will never succeed; skip it.
			c.metrics.Skipped.Add(1)
			c.logger.Error("undecodable message skipped",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.process(ctx, event, handler); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.metrics.Failed.Add(1)
			c.logger.Error("event handling failed after retries",
				logging.String("topic", msg.Topic),
				logging.String("fingerprint", event.Fingerprint),
				logging.Int64("offset", msg.Offset),
				logging.Err(err),
			)
		} else {
			c.metrics.Processed.Add(1)
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, event mint.Event, handler EventHandler) error {
	err := handler(ctx, event)
	if err == nil {
		return nil
	}

	backoff := c.retry.Backoff
	for i := 0; i < c.retry.MaxRetries; i++ {
		c.metrics.Retried.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err = handler(ctx, event); err == nil {
			return nil
		}

		backoff *= 2
		if backoff > c.retry.MaxBackoff {
			backoff = c.retry.MaxBackoff
		}
	}
	return err
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.Error("commit failed", logging.Err(err))
	}
}

func decodeMessage(msg kafka.Message) (mint.Event, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return mint.Event{}, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal event envelope")
	}
	return env.DecodeEvent()
}

// Metrics returns a snapshot of consume counters.
func (c *Consumer) Metrics() map[string]int64 {
	return map[string]int64{
		"consumed":  c.metrics.Consumed.Load(),
		"processed": c.metrics.Processed.Load(),
		"failed":    c.metrics.Failed.Load(),
		"retried":   c.metrics.Retried.Load(),
		"skipped":   c.metrics.Skipped.Load(),
	}
}

// Close stops the loop and releases the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.metrics.Consumed.Load()))
	return err
}
