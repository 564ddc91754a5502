package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/database"
	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/domain"
)

// CredentialRepository keeps the single admin login in a one-row table.
type CredentialRepository struct {
	db database.DBTX
}

// NewCredentialRepository creates a PostgreSQL-backed credential repository.
func NewCredentialRepository(db database.DBTX) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the stored credentials.
func (r *CredentialRepository) Get(ctx context.Context) (*domain.Credentials, error) {
	var c domain.Credentials
	err := r.db.QueryRow(ctx,
		`SELECT username, password_hash, updated_at FROM admin_credentials WHERE id = 1`,
	).Scan(&c.Username, &c.PasswordHash, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("credentials", "admin")
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &c, nil
}

// Put replaces the stored credentials.
func (r *CredentialRepository) Put(ctx context.Context, c *domain.Credentials) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_credentials (id, username, password_hash, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`,
		c.Username, c.PasswordHash, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put credentials: %w", err)
	}
	return nil
}
