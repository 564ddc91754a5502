package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/auth"
	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

const testSecret = "test-secret-at-least-32-characters!!"

func newTestAuthService(repo *mockCredentialRepository) (*AuthService, *auth.JWTManager) {
	tokens := auth.NewJWTManager(testSecret, time.Hour)
	return NewAuthService(repo, tokens, "admin", "password123", newTestLogger()), tokens
}

func TestAuthService_Login_DefaultsWhenUnset(t *testing.T) {
	repo := new(mockCredentialRepository)
	svc, tokens := newTestAuthService(repo)

	repo.On("Get", mock.Anything).Return(nil, apperrors.NotFound("credentials", "admin"))

	tok, err := svc.Login(context.Background(), "admin", "password123")
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	claims, err := tokens.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
}

func TestAuthService_Login_WrongDefaultPassword(t *testing.T) {
	repo := new(mockCredentialRepository)
	svc, _ := newTestAuthService(repo)

	repo.On("Get", mock.Anything).Return(nil, apperrors.NotFound("credentials", "admin"))

	_, err := svc.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Login_StoredCredentialsReplaceDefaults(t *testing.T) {
	repo := new(mockCredentialRepository)
	svc, _ := newTestAuthService(repo)

	hash, err := auth.HashPassword("new-password")
	require.NoError(t, err)
	repo.On("Get", mock.Anything).Return(&domain.Credentials{Username: "owner", PasswordHash: hash}, nil)

	_, err = svc.Login(context.Background(), "admin", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "owner", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	tok, err := svc.Login(context.Background(), "owner", "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
}

func TestAuthService_RotateCredentials(t *testing.T) {
	repo := new(mockCredentialRepository)
	svc, _ := newTestAuthService(repo)

	repo.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.Credentials) bool {
		return c.Username == "owner" && auth.CheckPassword(c.PasswordHash, "long-enough") == nil
	})).Return(nil)

	require.NoError(t, svc.RotateCredentials(context.Background(), " owner ", "long-enough"))
	repo.AssertExpectations(t)
}

func TestAuthService_RotateCredentials_Validation(t *testing.T) {
	repo := new(mockCredentialRepository)
	svc, _ := newTestAuthService(repo)

	err := svc.RotateCredentials(context.Background(), "", "short")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "is required", appErr.Fields["username"])
	assert.Equal(t, "must be at least 8 characters", appErr.Fields["password"])
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}
