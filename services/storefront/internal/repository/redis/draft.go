package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/quote"
)

const draftKeyPrefix = "storefront:quote:"

// DraftRepository stores quote drafts as JSON keyed by session id. Every save
// renews the TTL.
type DraftRepository struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewDraftRepository creates a Redis-backed draft repository.
func NewDraftRepository(client goredis.Cmdable, ttl time.Duration) *DraftRepository {
	return &DraftRepository{client: client, ttl: ttl}
}

// Get returns the session's draft or a NotFound error.
func (r *DraftRepository) Get(ctx context.Context, sessionID string) (*quote.Draft, error) {
	data, err := r.client.Get(ctx, draftKeyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, apperrors.NotFound("quote draft", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var d quote.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &d, nil
}

// Save overwrites the session's draft.
func (r *DraftRepository) Save(ctx context.Context, sessionID string, d *quote.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKeyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

// Delete removes the session's draft.
func (r *DraftRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, draftKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}
