package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func setupSegmentRepo(t *testing.T) (*SegmentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewSegmentRepository(mock), mock
}

func sampleSegment() *domain.Segment {
	return &domain.Segment{
		Key:       "faqs",
		Value:     json.RawMessage(`[{"question":"Do you ship?","answer":"Yes"}]`),
		UpdatedBy: "admin",
		UpdatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestSegmentRepository_Get_Success(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	s := sampleSegment()
	mock.ExpectQuery("SELECT key, value, updated_by, updated_at FROM segments").
		WithArgs("faqs").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value", "updated_by", "updated_at"}).
			AddRow(s.Key, []byte(s.Value), s.UpdatedBy, s.UpdatedAt))

	got, err := repo.Get(context.Background(), "faqs")
	require.NoError(t, err)
	assert.Equal(t, "faqs", got.Key)
	assert.JSONEq(t, string(s.Value), string(got.Value))
	assert.Equal(t, "admin", got.UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_Get_NotFound(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT key, value").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSegmentRepository_Get_DBError(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT key, value").
		WithArgs("faqs").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "faqs")
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "get segment faqs")
}

// ---------------------------------------------------------------------------
// Put / PutMany
// ---------------------------------------------------------------------------

func TestSegmentRepository_Put_Upserts(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	s := sampleSegment()
	mock.ExpectExec("INSERT INTO segments").
		WithArgs(s.Key, []byte(s.Value), s.UpdatedBy, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Put(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_PutMany_CommitsAll(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	now := time.Now()
	segments := []domain.Segment{
		{Key: "products", Value: json.RawMessage(`[]`), UpdatedAt: now},
		{Key: "faqs", Value: json.RawMessage(`[]`), UpdatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO segments").
		WithArgs("products", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO segments").
		WithArgs("faqs", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.PutMany(context.Background(), segments))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_PutMany_RollsBackOnError(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	segments := []domain.Segment{{Key: "products", Value: json.RawMessage(`[]`)}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO segments").
		WithArgs("products", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.PutMany(context.Background(), segments)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put segment products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListKeys
// ---------------------------------------------------------------------------

func TestSegmentRepository_ListKeys(t *testing.T) {
	repo, mock := setupSegmentRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT key FROM segments ORDER BY key").
		WillReturnRows(pgxmock.NewRows([]string{"key"}).AddRow("faqs").AddRow("products"))

	keys, err := repo.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"faqs", "products"}, keys)
}
