package authz

import (
	"context"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/pkg/apperr"
)

// Authorizer resolves a bearer credential to a Principal and checks the
// exact privilege a mutation requires. It fails closed: any validation
// error, expired token or missing profile denies the caller.
//
// The role is always re-read from the profile store. A role embedded in
// the credential is never trusted, since roles can change after issuance.
type Authorizer struct {
	tokens   outbound.TokenService
	profiles outbound.ProfileRepository
}

func NewAuthorizer(tokens outbound.TokenService, profiles outbound.ProfileRepository) *Authorizer {
	return &Authorizer{tokens: tokens, profiles: profiles}
}

func (a *Authorizer) Authorize(ctx context.Context, credential string, required entity.Role) (*entity.Principal, error) {
	if credential == "" {
		return nil, apperr.NewUnauthorized("credential required")
	}

	claims, err := a.tokens.ValidateAccessToken(credential)
	if err != nil {
		return nil, apperr.NewUnauthorized("invalid or expired credential")
	}

	profile, err := a.profiles.FindByID(ctx, claims.UserID)
	if err != nil {
		// Missing backing profile or store error both deny; the caller
		// never learns which.
		return nil, apperr.NewUnauthorized("credential has no backing profile")
	}

	principal := &entity.Principal{
		UserID:    profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		CompanyID: profile.CompanyID,
	}

	// Exact match only: no implicit escalation between privilege levels.
	if profile.Role != required {
		return principal, apperr.NewForbidden("requires " + string(required) + " privilege")
	}

	return principal, nil
}
