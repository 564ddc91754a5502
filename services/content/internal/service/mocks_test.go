package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

// --- Mock Repositories ---

type mockSegmentRepository struct {
	mock.Mock
}

func (m *mockSegmentRepository) Get(ctx context.Context, key string) (*domain.Segment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Segment), args.Error(1)
}

func (m *mockSegmentRepository) Put(ctx context.Context, segment *domain.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *mockSegmentRepository) PutMany(ctx context.Context, segments []domain.Segment) error {
	args := m.Called(ctx, segments)
	return args.Error(0)
}

func (m *mockSegmentRepository) ListKeys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Get(ctx context.Context) (*domain.Credentials, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credentials), args.Error(1)
}

func (m *mockCredentialRepository) Put(ctx context.Context, creds *domain.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

// --- In-memory fakes ---

type memoryCache struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]json.RawMessage{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value json.RawMessage, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

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

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject
	}
	return out
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
