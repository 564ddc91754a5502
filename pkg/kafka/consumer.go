package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/logger"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topic        string
	MinBytes     int
	MaxBytes     int
	MaxRetries   int
	RetryBackoff time.Duration
	// StartLatest makes a new group begin at the end of the topic
	// instead of replaying its history.
	StartLatest bool
}

func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.MinBytes == 0 {
		c.MinBytes = 1
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = 10 << 20
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	return c
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter forwards messages that exhaust their retries.
func WithDeadLetter(dlq DeadLetterWriter) ConsumerOption {
	return func(c *Consumer) { c.dlq = dlq }
}

// WithIdempotency skips events whose id the store has already seen.
func WithIdempotency(store IdempotencyStore) ConsumerOption {
	return func(c *Consumer) { c.dedup = store }
}

// Consumer reads one topic as part of a consumer group. Every fetched
// message is committed exactly once, whether handled, duplicated,
// undecodable or dead-lettered.
type Consumer struct {
	reader    messageReader
	cfg       ConsumerConfig
	handler   Handler
	logger    *slog.Logger
	dlq       DeadLetterWriter
	dedup     IdempotencyStore
	closeOnce sync.Once
}

// NewConsumer creates a consumer for cfg.Topic in cfg.GroupID.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	cfg = cfg.withDefaults()
	start := kafka.FirstOffset
	if cfg.StartLatest {
		start = kafka.LastOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		StartOffset: start,
	})
	return newConsumer(r, cfg, handler, logger, opts...)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:  r,
		cfg:     cfg.withDefaults(),
		handler: handler,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "consumer started",
		slog.String("topic", c.cfg.Topic),
		slog.String("group", c.cfg.GroupID),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopping", slog.String("topic", c.cfg.Topic))
				return c.Close()
			}
			c.logger.ErrorContext(ctx, "failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeReceived).Inc()
		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctx = extractTrace(ctx, msg)

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeFailed).Inc()
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		return
	}
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}

	if c.dedup != nil && event.ID != "" {
		seen, err := c.dedup.Contains(ctx, event.ID)
		if err != nil {
			c.logger.WarnContext(ctx, "idempotency lookup failed, processing anyway",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		} else if seen {
			consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeDuplicate).Inc()
			c.logger.DebugContext(ctx, "skipping duplicate event",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.Type),
			)
			return
		}
	}

	start := time.Now()
	lastErr := c.handleWithRetry(ctx, msg, event)
	consumerDuration.WithLabelValues(c.cfg.Topic, c.cfg.GroupID).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeFailed).Inc()
		c.logger.ErrorContext(ctx, "handler failed after all retries",
			slog.String("event_type", event.Type),
			slog.String("subject", event.Subject),
			slog.Int("retries", c.cfg.MaxRetries),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
		return
	}

	consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeProcessed).Inc()
	if c.dedup != nil && event.ID != "" {
		if err := c.dedup.Add(ctx, event.ID); err != nil {
			c.logger.WarnContext(ctx, "failed to record processed event",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			return nil
		}
		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.Type),
			slog.String("subject", event.Subject),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt == c.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.cfg.RetryBackoff):
		}
	}
	return lastErr
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.cfg.GroupID); err != nil {
		c.logger.ErrorContext(ctx, "failed to dead-letter message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	consumerMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcomeDeadLettered).Inc()
}

// Close closes the reader. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
