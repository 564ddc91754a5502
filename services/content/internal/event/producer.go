package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
)

// Event type and subject constants for content events.
const (
	EventSegmentReplaced = "content.segment.replaced"
	SubjectKindSegment   = "segment"
	SourceContentService = "content-service"
)

// TopicSegments carries one event per segment write.
var TopicSegments = pkgkafka.Topic("content", "segments")

// SegmentReplacedData is the payload for a content.segment.replaced event.
// Consumers re-fetch the value; it is not carried in the event.
type SegmentReplacedData struct {
	Key       string `json:"key"`
	UpdatedBy string `json:"updated_by,omitempty"`
	Bytes     int    `json:"bytes"`
	Seeded    bool   `json:"seeded,omitempty"`
}

// Producer publishes content events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the content service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishSegmentReplaced publishes a content.segment.replaced event.
func (p *Producer) PublishSegmentReplaced(ctx context.Context, data SegmentReplacedData) error {
	event, err := pkgkafka.NewEvent(ctx, EventSegmentReplaced, SubjectKindSegment, data.Key, SourceContentService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", EventSegmentReplaced, err)
	}

	if err := p.kafka.Publish(ctx, TopicSegments, event); err != nil {
		return fmt.Errorf("publish %s event: %w", EventSegmentReplaced, err)
	}

	p.logger.DebugContext(ctx, "published content.segment.replaced event",
		slog.String("key", data.Key),
		slog.Int("bytes", data.Bytes),
	)
	return nil
}
