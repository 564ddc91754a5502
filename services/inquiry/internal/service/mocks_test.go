package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock InquiryRepository ---

type mockInquiryRepository struct {
	mock.Mock
}

func (m *mockInquiryRepository) Create(ctx context.Context, q *domain.Inquiry) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockInquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *mockInquiryRepository) List(ctx context.Context, filter repository.InquiryFilter) ([]domain.Inquiry, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Inquiry), args.Int(1), args.Error(2)
}

func (m *mockInquiryRepository) UpdateStatus(ctx context.Context, id, status string) (string, error) {
	args := m.Called(ctx, id, status)
	return args.String(0), args.Error(1)
}

func (m *mockInquiryRepository) Counts(ctx context.Context) (repository.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.Counts), args.Error(1)
}

// --- Recording publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pkgkafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
