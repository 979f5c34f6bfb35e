package outbound

import (
	"context"
	"errors"
)

var (
	ErrIdentityExists   = errors.New("identity already exists")
	ErrIdentityNotFound = errors.New("identity not found")
)

// IdentityCredential is the stored authentication material for one
// identity, used to verify a login attempt.
type IdentityCredential struct {
	IdentityID   string
	Email        string
	PasswordHash string
}

// IdentityProvider manages authentication identities. Provisioning creates
// the identity first and the profile row second; a failed profile step
// leaves the identity in place for manual reconciliation.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, passwordHash, fullName string) (identityID string, err error)
	Credentials(ctx context.Context, email string) (*IdentityCredential, error)
}
