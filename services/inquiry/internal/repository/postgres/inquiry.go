package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/pagination"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/repository"
)

const inquiryColumns = `id, kind, status, contact, items, submission_date, updated_at`

// InquiryRepository implements repository.InquiryRepository. Contact and
// items are stored as jsonb; only the columns the dashboard filters on are
// broken out.
type InquiryRepository struct {
	db database.DBTX
}

// NewInquiryRepository creates a PostgreSQL-backed inquiry repository.
func NewInquiryRepository(db database.DBTX) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create inserts a new inquiry.
func (r *InquiryRepository) Create(ctx context.Context, q *domain.Inquiry) (err error) {
	query := `INSERT INTO inquiries (` + inquiryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, end := database.TraceQuery(ctx, "CreateInquiry", query)
	defer func() { end(err) }()

	contact, err := json.Marshal(q.Contact)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	_, err = r.db.Exec(ctx, query, q.ID, q.Kind, q.Status, contact, items, q.SubmissionDate, q.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperrors.AlreadyExists("inquiry", "id", q.ID)
	}
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// GetByID retrieves one inquiry.
func (r *InquiryRepository) GetByID(ctx context.Context, id string) (q *domain.Inquiry, err error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "GetInquiry", query)
	defer func() { end(err) }()

	q, err = scanInquiry(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("inquiry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get inquiry %s: %w", id, err)
	}
	return q, nil
}

// List returns one page of inquiries with the total match count.
func (r *InquiryRepository) List(ctx context.Context, filter repository.InquiryFilter) (list []domain.Inquiry, total int, err error) {
	order := "DESC"
	if filter.Oldest {
		order = "ASC"
	}
	// The id tiebreak keeps paging stable across equal timestamps.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM inquiries
		WHERE ($1 = '' OR kind = $1)
		ORDER BY submission_date %s, id %s
		LIMIT $2 OFFSET $3`, inquiryColumns, order, order)
	ctx, end := database.TraceQuery(ctx, "ListInquiries", query)
	defer func() { end(err) }()

	params := filter.Params
	if params.Page < 1 || params.PerPage < 1 {
		params = pagination.DefaultParams()
	}

	rows, err := r.db.Query(ctx, query, filter.Kind, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	list = make([]domain.Inquiry, 0, params.PerPage)
	for rows.Next() {
		var (
			q              domain.Inquiry
			contact, items []byte
		)
		if err = rows.Scan(&q.ID, &q.Kind, &q.Status, &contact, &items, &q.SubmissionDate, &q.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan inquiry row: %w", err)
		}
		if err = decodeBody(&q, contact, items); err != nil {
			return nil, 0, err
		}
		list = append(list, q)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate inquiry rows: %w", err)
	}
	return list, total, nil
}

// UpdateStatus sets the status of one inquiry and returns the old value.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id, status string) (old string, err error) {
	query := `
		UPDATE inquiries AS i
		SET status = $1, updated_at = $2
		FROM (SELECT id, status FROM inquiries WHERE id = $3 FOR UPDATE) AS prev
		WHERE i.id = prev.id
		RETURNING prev.status`
	ctx, end := database.TraceQuery(ctx, "UpdateInquiryStatus", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query, status, time.Now().UTC(), id).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFound("inquiry", id)
	}
	if err != nil {
		return "", fmt.Errorf("update inquiry status: %w", err)
	}
	return old, nil
}

// Counts returns the dashboard totals in one pass.
func (r *InquiryRepository) Counts(ctx context.Context) (c repository.Counts, err error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE kind = 'order'),
			count(*) FILTER (WHERE kind = 'quote'),
			count(*) FILTER (WHERE status = $1)
		FROM inquiries`
	ctx, end := database.TraceQuery(ctx, "CountInquiries", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, domain.StatusNew).Scan(&c.Total, &c.Orders, &c.Quotes, &c.New); err != nil {
		return repository.Counts{}, fmt.Errorf("count inquiries: %w", err)
	}
	return c, nil
}

func scanInquiry(row pgx.Row) (*domain.Inquiry, error) {
	var (
		q              domain.Inquiry
		contact, items []byte
	)
	if err := row.Scan(&q.ID, &q.Kind, &q.Status, &contact, &items, &q.SubmissionDate, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeBody(&q, contact, items); err != nil {
		return nil, err
	}
	return &q, nil
}

func decodeBody(q *domain.Inquiry, contact, items []byte) error {
	if err := json.Unmarshal(contact, &q.Contact); err != nil {
		return fmt.Errorf("unmarshal contact of %s: %w", q.ID, err)
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return fmt.Errorf("unmarshal items of %s: %w", q.ID, err)
	}
	if q.Items == nil {
		q.Items = []domain.Item{}
	}
	return nil
}
