package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/seed"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/event"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/repository"
)

// SegmentService implements the business logic for segment reads and writes.
type SegmentService struct {
	repo     repository.SegmentRepository
	cache    repository.SegmentCache
	producer *event.Producer
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSegmentService creates a new segment service. cache and producer may be
// nil, in which case reads go straight to the repository and writes are not
// announced.
func NewSegmentService(
	repo repository.SegmentRepository,
	cache repository.SegmentCache,
	producer *event.Producer,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *SegmentService {
	return &SegmentService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func checkKey(key string) error {
	if domain.IsReserved(key) {
		return apperrors.Forbidden(fmt.Sprintf("segment %q is reserved", key))
	}
	if !domain.ValidKey(key) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid segment key %q", key))
	}
	return nil
}

// Get returns the stored JSON value of key.
func (s *SegmentService) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	if s.cache != nil {
		value, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "segment cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return value, nil
		}
	}

	seg, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, seg.Value, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "segment cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
	return seg.Value, nil
}

// Put replaces the whole value of key. The last write wins.
func (s *SegmentService) Put(ctx context.Context, key string, value json.RawMessage, updatedBy string) (*domain.Segment, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, apperrors.InvalidInput("segment value must be valid JSON")
	}

	seg := &domain.Segment{
		Key:       key,
		Value:     value,
		UpdatedBy: updatedBy,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, seg); err != nil {
		return nil, fmt.Errorf("save segment %s: %w", key, err)
	}

	s.evict(ctx, key)
	s.publish(ctx, event.SegmentReplacedData{Key: key, UpdatedBy: updatedBy, Bytes: len(value)})

	s.logger.InfoContext(ctx, "segment replaced",
		slog.String("key", key),
		slog.Int("bytes", len(value)),
	)
	return seg, nil
}

// ListKeys returns every stored segment key.
func (s *SegmentService) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.repo.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if !domain.IsReserved(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Seed overwrites every known segment with its default value and returns the
// number of segments written.
func (s *SegmentService) Seed(ctx context.Context, updatedBy string) (int, error) {
	defaults, err := seed.Defaults()
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("load default segments: %w", err))
	}

	now := s.now().UTC()
	segments := make([]domain.Segment, 0, len(seed.Keys))
	for _, key := range seed.Keys {
		segments = append(segments, domain.Segment{
			Key:       key,
			Value:     defaults[key],
			UpdatedBy: updatedBy,
			UpdatedAt: now,
		})
	}

	if err := s.repo.PutMany(ctx, segments); err != nil {
		return 0, fmt.Errorf("seed segments: %w", err)
	}

	s.evict(ctx, seed.Keys...)
	for _, seg := range segments {
		s.publish(ctx, event.SegmentReplacedData{Key: seg.Key, UpdatedBy: updatedBy, Bytes: len(seg.Value), Seeded: true})
	}

	s.logger.InfoContext(ctx, "default segments seeded", slog.Int("count", len(segments)))
	return len(segments), nil
}

func (s *SegmentService) evict(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "segment cache eviction failed", slog.String("error", err.Error()))
	}
}

// publish is best effort: the write is already durable.
func (s *SegmentService) publish(ctx context.Context, data event.SegmentReplacedData) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishSegmentReplaced(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish segment event",
			slog.String("key", data.Key),
			slog.String("error", err.Error()),
		)
	}
}
