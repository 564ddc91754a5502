package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/pagination"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/event"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/repository"
)

var testNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func newTestInquiryService(repo *mockInquiryRepository) (*InquiryService, *recordingPublisher) {
	logger := newTestLogger()
	pub := &recordingPublisher{}
	svc := NewInquiryService(repo, event.NewProducer(pub, logger), logger)
	svc.now = func() time.Time { return testNow }
	return svc, pub
}

func validSubmission() SubmitInput {
	return SubmitInput{
		Kind:    domain.KindQuote,
		Contact: domain.Contact{Name: "Dana", Email: "dana@example.com"},
		Items: []domain.Item{{
			Product:        domain.ProductRef{ID: "JER-100", Name: "Pro Jersey"},
			Color:          "Black",
			SizeQuantities: map[string]int{"M": 12},
		}},
	}
}

func sampleInquiry(id, status string) *domain.Inquiry {
	return &domain.Inquiry{ID: id, Kind: domain.KindQuote, Status: status, SubmissionDate: testNow}
}

// ============================================================================
// Submit
// ============================================================================

func TestSubmit_AssignsIDAndStatus(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, pub := newTestInquiryService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(q *domain.Inquiry) bool {
		return q.Status == domain.StatusNew && q.Kind == domain.KindQuote
	})).Return(nil)

	q, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Regexp(t, `^QT-[0-9A-F]{8}$`, q.ID)
	assert.Equal(t, domain.StatusNew, q.Status)
	assert.Equal(t, testNow, q.SubmissionDate)
	assert.Equal(t, []string{event.EventInquirySubmitted}, pub.types())
	repo.AssertExpectations(t)
}

func TestSubmit_OrderPrefix(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	in := validSubmission()
	in.Kind = domain.KindOrder
	q, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-`, q.ID)
}

func TestSubmit_KeepsPastSubmissionDate(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	past := testNow.Add(-2 * time.Hour)
	in := validSubmission()
	in.SubmissionDate = &past

	q, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, past, q.SubmissionDate)
}

func TestSubmit_ReplacesFutureSubmissionDate(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	future := testNow.Add(24 * time.Hour)
	in := validSubmission()
	in.SubmissionDate = &future

	q, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, testNow, q.SubmissionDate)
}

func TestSubmit_RetriesOnIDCollision(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("inquiry", "id", "QT-X")).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestSubmit_EmptyItems(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	in := validSubmission()
	in.Items = nil

	_, err := svc.Submit(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_PublishFailureDoesNotFail(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, pub := newTestInquiryService(repo)
	pub.err = errors.New("broker down")
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Submit(context.Background(), validSubmission())
	assert.NoError(t, err)
}

func TestSubmit_RepositoryError(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, pub := newTestInquiryService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create inquiry")
	assert.Empty(t, pub.types())
}

// ============================================================================
// Track
// ============================================================================

func TestTrack_NormalisesID(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	q := sampleInquiry("QT-1A2B3C4D", domain.StatusContacted)
	q.Contact = domain.Contact{Name: "Dana", Email: "dana@example.com"}
	repo.On("GetByID", mock.Anything, "QT-1A2B3C4D").Return(q, nil)

	view, err := svc.Track(context.Background(), " qt-1a2b3c4d ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContacted, view.Status)
	assert.Equal(t, "Dana", view.Contact.Name)
}

func TestTrack_UnknownPrefix(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	_, err := svc.Track(context.Background(), "MOCK-QT-123")
	assert.True(t, apperrors.IsNotFound(err))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTrack_NotFound(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("GetByID", mock.Anything, "ORD-00000000").Return(nil, apperrors.NotFound("inquiry", "ORD-00000000"))

	_, err := svc.Track(context.Background(), "ORD-00000000")
	assert.True(t, apperrors.IsNotFound(err))
}

// ============================================================================
// List
// ============================================================================

func TestList_MapsFilter(t *testing.T) {
	tests := []struct {
		name string
		in   ListInput
		want repository.InquiryFilter
	}{
		{"defaults", ListInput{Params: pagination.DefaultParams()}, repository.InquiryFilter{Params: pagination.DefaultParams()}},
		{"all kinds", ListInput{Kind: "all", Params: pagination.DefaultParams()}, repository.InquiryFilter{Params: pagination.DefaultParams()}},
		{"orders oldest", ListInput{Kind: "order", Sort: "oldest", Params: pagination.DefaultParams()},
			repository.InquiryFilter{Kind: "order", Oldest: true, Params: pagination.DefaultParams()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockInquiryRepository)
			svc, _ := newTestInquiryService(repo)
			repo.On("List", mock.Anything, tt.want).Return([]domain.Inquiry{}, 0, nil)

			_, _, err := svc.List(context.Background(), tt.in)
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestList_InvalidParameters(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	_, _, err := svc.List(context.Background(), ListInput{Kind: "invoice"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.List(context.Background(), ListInput{Sort: "price"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ============================================================================
// UpdateStatus
// ============================================================================

func TestUpdateStatus_AnyTransition(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, pub := newTestInquiryService(repo)

	repo.On("UpdateStatus", mock.Anything, "QT-1", domain.StatusNew).Return(domain.StatusCompleted, nil)
	repo.On("GetByID", mock.Anything, "QT-1").Return(sampleInquiry("QT-1", domain.StatusNew), nil)

	q, err := svc.UpdateStatus(context.Background(), "QT-1", domain.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, q.Status)
	assert.Equal(t, []string{event.EventInquiryStatusChanged}, pub.types())
}

func TestUpdateStatus_UnchangedPublishesNothing(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, pub := newTestInquiryService(repo)

	repo.On("UpdateStatus", mock.Anything, "QT-1", domain.StatusContacted).Return(domain.StatusContacted, nil)
	repo.On("GetByID", mock.Anything, "QT-1").Return(sampleInquiry("QT-1", domain.StatusContacted), nil)

	_, err := svc.UpdateStatus(context.Background(), "QT-1", domain.StatusContacted)
	require.NoError(t, err)
	assert.Empty(t, pub.types())
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	_, err := svc.UpdateStatus(context.Background(), "QT-1", "Shipped")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["status"], "In Progress")
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("UpdateStatus", mock.Anything, "QT-9", domain.StatusCancelled).Return("", apperrors.NotFound("inquiry", "QT-9"))

	_, err := svc.UpdateStatus(context.Background(), "QT-9", domain.StatusCancelled)
	assert.True(t, apperrors.IsNotFound(err))
}

// ============================================================================
// Stats
// ============================================================================

func TestStats(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)

	recent := []domain.Inquiry{*sampleInquiry("QT-2", domain.StatusNew), *sampleInquiry("QT-1", domain.StatusNew)}
	repo.On("Counts", mock.Anything).Return(repository.Counts{Total: 7, Orders: 3, Quotes: 4, New: 2}, nil)
	repo.On("List", mock.Anything, repository.InquiryFilter{Params: pagination.Params{Page: 1, PerPage: RecentLimit}}).
		Return(recent, 7, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 3, stats.Orders)
	assert.Equal(t, 4, stats.Quotes)
	assert.Equal(t, 2, stats.New)
	assert.Len(t, stats.Recent, 2)
}

func TestStats_CountError(t *testing.T) {
	repo := new(mockInquiryRepository)
	svc, _ := newTestInquiryService(repo)
	repo.On("Counts", mock.Anything).Return(repository.Counts{}, errors.New("timeout"))

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count inquiries")
}
