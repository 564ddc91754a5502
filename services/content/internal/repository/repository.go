package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

// SegmentRepository persists segments.
type SegmentRepository interface {
	// Get returns the segment or an apperrors.NotFound error.
	Get(ctx context.Context, key string) (*domain.Segment, error)

	// Put inserts or replaces the whole segment.
	Put(ctx context.Context, segment *domain.Segment) error

	// PutMany replaces several segments in one transaction.
	PutMany(ctx context.Context, segments []domain.Segment) error

	// ListKeys returns every stored key in alphabetical order.
	ListKeys(ctx context.Context) ([]string, error)
}

// CredentialRepository stores the admin login.
type CredentialRepository interface {
	// Get returns the stored credentials or an apperrors.NotFound error when
	// none have been set yet.
	Get(ctx context.Context) (*domain.Credentials, error)

	// Put replaces the stored credentials.
	Put(ctx context.Context, creds *domain.Credentials) error
}

// SegmentCache is a read-through cache in front of SegmentRepository.
type SegmentCache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
