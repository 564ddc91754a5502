package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
)

// Content events consumed by the storefront. These mirror the content
// service's producer.
const (
	EventSegmentReplaced = "content.segment.replaced"
	ConsumerGroup        = "storefront-segments"
)

// Subscription is one replica's consumer group and idempotency namespace.
type Subscription struct {
	GroupID           string
	IdempotencyPrefix string
}

// ReplicaSubscription scopes both the group and the processed-event keys
// to instanceID. Every replica holds its own snapshot, so each one has to
// see every segment event rather than share them as a group.
func ReplicaSubscription(instanceID string) Subscription {
	return Subscription{
		GroupID:           ConsumerGroup + "-" + instanceID,
		IdempotencyPrefix: "storefront:" + instanceID + ":events",
	}
}

// TopicSegments is the content service's segment topic.
var TopicSegments = pkgkafka.Topic("content", "segments")

// SegmentReplacedData is the payload of a content.segment.replaced event.
type SegmentReplacedData struct {
	Key       string `json:"key"`
	UpdatedBy string `json:"updated_by,omitempty"`
	Bytes     int    `json:"bytes"`
	Seeded    bool   `json:"seeded,omitempty"`
}

// Refresher reloads one segment from the content service.
type Refresher interface {
	Refresh(ctx context.Context, key string) error
}

// SegmentConsumer keeps the local content store in step with writes made
// through any replica or directly against the content service.
type SegmentConsumer struct {
	store  Refresher
	logger *slog.Logger
}

// NewSegmentConsumer creates a consumer handler refreshing store.
func NewSegmentConsumer(store Refresher, logger *slog.Logger) *SegmentConsumer {
	return &SegmentConsumer{store: store, logger: logger}
}

// Handle implements pkgkafka.Handler.
func (c *SegmentConsumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.Type != EventSegmentReplaced {
		c.logger.DebugContext(ctx, "ignoring event", slog.String("type", event.Type))
		return nil
	}

	var data SegmentReplacedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", EventSegmentReplaced, err)
	}
	if !contentstore.IsKnownKey(data.Key) {
		c.logger.WarnContext(ctx, "segment event for unknown key", slog.String("key", data.Key))
		return nil
	}

	if err := c.store.Refresh(ctx, data.Key); err != nil {
		return fmt.Errorf("refresh segment from event: %w", err)
	}

	c.logger.InfoContext(ctx, "segment refreshed from event",
		slog.String("key", data.Key),
		slog.String("event_id", event.ID),
		slog.Bool("seeded", data.Seeded),
	)
	return nil
}
