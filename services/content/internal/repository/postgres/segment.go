package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

const upsertSegment = `
	INSERT INTO segments (key, value, updated_by, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`

// SegmentRepository implements repository.SegmentRepository on a jsonb table.
type SegmentRepository struct {
	db database.DBTX
}

// NewSegmentRepository creates a PostgreSQL-backed segment repository.
func NewSegmentRepository(db database.DBTX) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// Get retrieves one segment by key.
func (r *SegmentRepository) Get(ctx context.Context, key string) (seg *domain.Segment, err error) {
	query := `SELECT key, value, updated_by, updated_at FROM segments WHERE key = $1`
	ctx, end := database.TraceQuery(ctx, "GetSegment", query)
	defer func() { end(err) }()

	var s domain.Segment
	var value []byte
	err = r.db.QueryRow(ctx, query, key).Scan(&s.Key, &value, &s.UpdatedBy, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("segment", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get segment %s: %w", key, err)
	}
	s.Value = value
	return &s, nil
}

// Put inserts or replaces a segment.
func (r *SegmentRepository) Put(ctx context.Context, s *domain.Segment) (err error) {
	ctx, end := database.TraceQuery(ctx, "PutSegment", upsertSegment)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, upsertSegment, s.Key, []byte(s.Value), s.UpdatedBy, s.UpdatedAt); err != nil {
		return fmt.Errorf("put segment %s: %w", s.Key, err)
	}
	return nil
}

// PutMany replaces every given segment atomically.
func (r *SegmentRepository) PutMany(ctx context.Context, segments []domain.Segment) (err error) {
	ctx, end := database.TraceQuery(ctx, "PutSegments", upsertSegment)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, s := range segments {
		if _, err = tx.Exec(ctx, upsertSegment, s.Key, []byte(s.Value), s.UpdatedBy, s.UpdatedAt); err != nil {
			return fmt.Errorf("put segment %s: %w", s.Key, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit segments: %w", err)
	}
	return nil
}

// ListKeys returns all stored keys sorted alphabetically.
func (r *SegmentRepository) ListKeys(ctx context.Context) (keys []string, err error) {
	query := `SELECT key FROM segments ORDER BY key`
	ctx, end := database.TraceQuery(ctx, "ListSegmentKeys", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list segment keys: %w", err)
	}
	keys, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan segment keys: %w", err)
	}
	return keys, nil
}
