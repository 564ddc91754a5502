package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
)

// Event type and subject constants for inquiry events.
const (
	EventInquirySubmitted     = "inquiry.submitted"
	EventInquiryStatusChanged = "inquiry.status_changed"
	SubjectKindInquiry        = "inquiry"
	SourceInquiryService      = "inquiry-service"
)

// TopicInquiries carries every inquiry lifecycle event.
var TopicInquiries = pkgkafka.Topic("inquiry", "events")

// InquirySubmittedData is the payload for an inquiry.submitted event. Contact
// details beyond the name stay in the inquiry service.
type InquirySubmittedData struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Items      int    `json:"items"`
	TotalUnits int    `json:"total_units"`
}

// InquiryStatusChangedData is the payload for an inquiry.status_changed event.
type InquiryStatusChangedData struct {
	ID        string `json:"id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Producer publishes inquiry events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the inquiry service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishSubmitted publishes an inquiry.submitted event.
func (p *Producer) PublishSubmitted(ctx context.Context, q *domain.Inquiry) error {
	data := InquirySubmittedData{
		ID:         q.ID,
		Kind:       q.Kind,
		Name:       q.Contact.Name,
		Items:      len(q.Items),
		TotalUnits: q.TotalUnits(),
	}
	return p.publish(ctx, EventInquirySubmitted, q.ID, data)
}

// PublishStatusChanged publishes an inquiry.status_changed event.
func (p *Producer) PublishStatusChanged(ctx context.Context, id, oldStatus, newStatus string) error {
	data := InquiryStatusChangedData{ID: id, OldStatus: oldStatus, NewStatus: newStatus}
	return p.publish(ctx, EventInquiryStatusChanged, id, data)
}

func (p *Producer) publish(ctx context.Context, eventType, id string, data any) error {
	event, err := pkgkafka.NewEvent(ctx, eventType, SubjectKindInquiry, id, SourceInquiryService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.kafka.Publish(ctx, TopicInquiries, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published inquiry event",
		slog.String("type", eventType),
		slog.String("inquiry_id", id),
	)
	return nil
}
