package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/client"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/quote"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Content remote ---

type stubRemote struct {
	mu      sync.Mutex
	saved   map[string]json.RawMessage
	tokens  []string
	saveErr error
}

func newStubRemote() *stubRemote {
	return &stubRemote{saved: map[string]json.RawMessage{}}
}

func (r *stubRemote) Fetch(_ context.Context, key string) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.saved[key]; ok {
		return v, nil
	}
	return nil, apperrors.NotFound("segment", key)
}

func (r *stubRemote) Save(_ context.Context, key string, value json.RawMessage, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[key] = append(json.RawMessage(nil), value...)
	return nil
}

// newTestStore returns a store holding the given segments on top of the
// defaults.
func newTestStore(t *testing.T, segments map[string]string) (*contentstore.Store, *stubRemote) {
	t.Helper()
	remote := newStubRemote()
	store, err := contentstore.New(remote, newTestLogger())
	require.NoError(t, err)
	for key, value := range segments {
		_, err := store.Replace(context.Background(), key, json.RawMessage(value), "setup")
		require.NoError(t, err)
	}
	remote.tokens = nil
	return store, remote
}

// --- Mock DraftRepository ---

type mockDraftRepository struct {
	mock.Mock
}

func (m *mockDraftRepository) Get(ctx context.Context, sessionID string) (*quote.Draft, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Draft), args.Error(1)
}

func (m *mockDraftRepository) Save(ctx context.Context, sessionID string, d *quote.Draft) error {
	return m.Called(ctx, sessionID, d).Error(0)
}

func (m *mockDraftRepository) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// --- Mock Submitter ---

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, sub quote.Submission) (*client.Receipt, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Receipt), args.Error(1)
}
