package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/logger"
)

// Event is the envelope every service publishes. Data carries the
// event-specific payload; consumers decode it with UnmarshalData.
type Event struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Subject       string            `json:"subject"`
	SubjectKind   string            `json:"subject_kind"`
	Version       int               `json:"version"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent builds an event about subject (a segment key, an inquiry id).
// The correlation id is taken from ctx when present.
func NewEvent(ctx context.Context, eventType, subjectKind, subject, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Subject:       subject,
		SubjectKind:   subjectKind,
		Version:       1,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Data:          raw,
	}, nil
}

// WithMetadata adds a key-value pair to the event metadata.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent deserializes an event from JSON bytes.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
