package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/auth"
	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/repository"
)

var errBadLogin = apperrors.Unauthorized("invalid username or password")

// AuthService issues admin tokens and manages the admin login.
type AuthService struct {
	creds           repository.CredentialRepository
	tokens          *auth.JWTManager
	defaultUsername string
	defaultPassword string
	logger          *slog.Logger
}

// NewAuthService creates an auth service. The default login is accepted only
// while no credentials have been stored.
func NewAuthService(
	creds repository.CredentialRepository,
	tokens *auth.JWTManager,
	defaultUsername, defaultPassword string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		creds:           creds,
		tokens:          tokens,
		defaultUsername: defaultUsername,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

// Login verifies username and password and returns a signed admin token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	stored, err := s.creds.Get(ctx)
	switch {
	case apperrors.IsNotFound(err):
		if !equal(username, s.defaultUsername) || !equal(password, s.defaultPassword) {
			return nil, s.reject(ctx, username)
		}
	case err != nil:
		return nil, fmt.Errorf("load credentials: %w", err)
	default:
		if !equal(username, stored.Username) {
			return nil, s.reject(ctx, username)
		}
		if err := auth.CheckPassword(stored.PasswordHash, password); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return nil, s.reject(ctx, username)
			}
			return nil, err
		}
	}

	token, expiresAt, err := s.tokens.Generate(username, middleware.RoleAdmin)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.InfoContext(ctx, "admin logged in", slog.String("username", username))
	return &domain.Token{Token: token, ExpiresAt: expiresAt}, nil
}

// RotateCredentials replaces the admin login. The previous password stops
// working immediately; issued tokens stay valid until they expire.
func (s *AuthService) RotateCredentials(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "is required"
	}
	if len(password) < auth.MinPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)
	}
	if len(fields) > 0 {
		return apperrors.InvalidFields(fields)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.creds.Put(ctx, &domain.Credentials{
		Username:     username,
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	s.logger.InfoContext(ctx, "admin credentials rotated", slog.String("username", username))
	return nil
}

func (s *AuthService) reject(ctx context.Context, username string) error {
	s.logger.WarnContext(ctx, "admin login rejected", slog.String("username", username))
	return errBadLogin
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
