package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/swairua/medplus/application/port/outbound"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type identityProvider struct {
	db *sql.DB
}

func NewIdentityProvider(db *sql.DB) outbound.IdentityProvider {
	return &identityProvider{db: db}
}

func (p *identityProvider) CreateIdentity(ctx context.Context, email, passwordHash, fullName string) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO auth_identities (id, email, password_hash, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.db.ExecContext(ctx, query, id, email, passwordHash, fullName, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", outbound.ErrIdentityExists
		}
		return "", fmt.Errorf("failed to create identity: %w", err)
	}
	return id, nil
}

func (p *identityProvider) Credentials(ctx context.Context, email string) (*outbound.IdentityCredential, error) {
	query := `SELECT id, email, password_hash FROM auth_identities WHERE email = $1`

	var cred outbound.IdentityCredential
	err := p.db.QueryRowContext(ctx, query, email).Scan(&cred.IdentityID, &cred.Email, &cred.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to load identity credentials: %w", err)
	}
	return &cred, nil
}
