package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/pagination"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/event"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/repository"
)

const (
	// RecentLimit is the number of inquiries on the dashboard's activity list.
	RecentLimit = 5

	// Accepted clock skew for a client-supplied submission date.
	maxClockSkew = 5 * time.Minute

	idAttempts = 3
)

// Sort orders for List.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// SubmitInput is a submission from the storefront.
type SubmitInput struct {
	Kind           string         `json:"kind" validate:"required,oneof=order quote"`
	Contact        domain.Contact `json:"contact"`
	Items          []domain.Item  `json:"items" validate:"required,min=1,max=100,dive"`
	SubmissionDate *time.Time     `json:"submissionDate,omitempty"`
}

// ListInput selects a page of the admin list.
type ListInput struct {
	Kind string
	Sort string
	pagination.Params
}

// InquiryService implements inquiry intake, tracking and administration.
type InquiryService struct {
	repo     repository.InquiryRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewInquiryService creates a new inquiry service. producer may be nil.
func NewInquiryService(repo repository.InquiryRepository, producer *event.Producer, logger *slog.Logger) *InquiryService {
	return &InquiryService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit records a new inquiry with status New and a freshly assigned id.
func (s *InquiryService) Submit(ctx context.Context, in SubmitInput) (*domain.Inquiry, error) {
	if !domain.IsValidKind(in.Kind) {
		return nil, apperrors.InvalidFields(map[string]string{"kind": "must be one of: order quote"})
	}
	if len(in.Items) == 0 {
		return nil, apperrors.InvalidFields(map[string]string{"items": "at least one item is required"})
	}

	now := s.now().UTC()
	submitted := now
	// A client date is kept unless it is in the future.
	if in.SubmissionDate != nil && !in.SubmissionDate.IsZero() && !in.SubmissionDate.After(now.Add(maxClockSkew)) {
		submitted = in.SubmissionDate.UTC()
	}

	q := &domain.Inquiry{
		Kind:           in.Kind,
		Status:         domain.StatusNew,
		Contact:        in.Contact,
		Items:          in.Items,
		SubmissionDate: submitted,
		UpdatedAt:      now,
	}

	var err error
	for range idAttempts {
		q.ID = domain.NewID(in.Kind)
		err = s.repo.Create(ctx, q)
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			break
		}
		s.logger.WarnContext(ctx, "inquiry id collision, retrying", slog.String("inquiry_id", q.ID))
	}
	if err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishSubmitted(ctx, q); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish inquiry.submitted event",
				slog.String("inquiry_id", q.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "inquiry submitted",
		slog.String("inquiry_id", q.ID),
		slog.String("kind", q.Kind),
		slog.Int("items", len(q.Items)),
	)
	return q, nil
}

// Track returns the redacted view of an inquiry. Ids that cannot have been
// issued are rejected without a lookup.
func (s *InquiryService) Track(ctx context.Context, id string) (*domain.TrackView, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if _, ok := domain.KindFromID(id); !ok {
		return nil, apperrors.NotFound("inquiry", id)
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("track inquiry: %w", err)
	}
	view := q.Track()
	return &view, nil
}

// Get returns the full inquiry.
func (s *InquiryService) Get(ctx context.Context, id string) (*domain.Inquiry, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get inquiry: %w", err)
	}
	return q, nil
}

// List returns one page of inquiries. Kind "" or "all" lists both kinds.
func (s *InquiryService) List(ctx context.Context, in ListInput) ([]domain.Inquiry, int, error) {
	filter := repository.InquiryFilter{Params: in.Params}

	switch in.Kind {
	case "", "all":
	case domain.KindOrder, domain.KindQuote:
		filter.Kind = in.Kind
	default:
		return nil, 0, apperrors.InvalidFields(map[string]string{"kind": "must be one of: all order quote"})
	}

	switch in.Sort {
	case "", SortNewest:
	case SortOldest:
		filter.Oldest = true
	default:
		return nil, 0, apperrors.InvalidFields(map[string]string{"sort": "must be one of: newest oldest"})
	}

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	return list, total, nil
}

// UpdateStatus sets any status from the vocabulary.
func (s *InquiryService) UpdateStatus(ctx context.Context, id, status string) (*domain.Inquiry, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidFields(map[string]string{
			"status": "must be one of: " + strings.Join(domain.ValidStatuses(), ", "),
		})
	}

	old, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update inquiry status: %w", err)
	}

	if old != status && s.producer != nil {
		if err := s.producer.PublishStatusChanged(ctx, id, old, status); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish inquiry.status_changed event",
				slog.String("inquiry_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "inquiry status updated",
		slog.String("inquiry_id", id),
		slog.String("old_status", old),
		slog.String("new_status", status),
	)
	return s.Get(ctx, id)
}

// Stats returns the dashboard totals and the most recent submissions.
func (s *InquiryService) Stats(ctx context.Context) (*domain.Stats, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count inquiries: %w", err)
	}

	recent, _, err := s.repo.List(ctx, repository.InquiryFilter{
		Params: pagination.Params{Page: 1, PerPage: RecentLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("list recent inquiries: %w", err)
	}

	return &domain.Stats{
		Total:  counts.Total,
		Orders: counts.Orders,
		Quotes: counts.Quotes,
		New:    counts.New,
		Recent: recent,
	}, nil
}
