package repository

import (
	"context"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/pagination"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
)

// InquiryFilter selects a page of inquiries. An empty Kind means both.
type InquiryFilter struct {
	Kind   string
	Oldest bool
	pagination.Params
}

// Counts are the dashboard totals.
type Counts struct {
	Total  int
	Orders int
	Quotes int
	New    int
}

// InquiryRepository defines the interface for inquiry persistence.
type InquiryRepository interface {
	// Create inserts a new inquiry. A duplicate id yields an
	// apperrors.AlreadyExists error.
	Create(ctx context.Context, q *domain.Inquiry) error

	// GetByID returns the inquiry or an apperrors.NotFound error.
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)

	// List returns one page ordered by submission date, plus the total
	// number of matching rows.
	List(ctx context.Context, filter InquiryFilter) ([]domain.Inquiry, int, error)

	// UpdateStatus sets the status and returns the previous one.
	UpdateStatus(ctx context.Context, id, status string) (string, error)

	// Counts returns the dashboard totals.
	Counts(ctx context.Context) (Counts, error)
}
