package auth

import (
	"context"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/pkg/apperr"
)

// LoginUseCase verifies an identity credential and issues the bearer token
// the mutation pipeline checks. Invalid email and wrong password are
// indistinguishable to the caller.
type LoginUseCase struct {
	identities outbound.IdentityProvider
	profiles   outbound.ProfileRepository
	passwords  outbound.PasswordService
	tokens     outbound.TokenService
	log        logger.Logger
}

func NewLoginUseCase(
	identities outbound.IdentityProvider,
	profiles outbound.ProfileRepository,
	passwords outbound.PasswordService,
	tokens outbound.TokenService,
	log logger.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		identities: identities,
		profiles:   profiles,
		passwords:  passwords,
		tokens:     tokens,
		log:        log,
	}
}

func (uc *LoginUseCase) Login(ctx context.Context, email, password string) (*inbound.LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.NewInvalidInput("email and password are required")
	}

	cred, err := uc.identities.Credentials(ctx, email)
	if err != nil {
		return nil, apperr.NewUnauthorized("invalid credentials")
	}

	ok, err := uc.passwords.VerifyPassword(password, cred.PasswordHash)
	if err != nil || !ok {
		uc.log.Warn(ctx, "failed login attempt", map[string]interface{}{"email": email})
		return nil, apperr.NewUnauthorized("invalid credentials")
	}

	profile, err := uc.profiles.FindByID(ctx, cred.IdentityID)
	if err != nil {
		return nil, apperr.NewUnauthorized("invalid credentials")
	}
	if profile.Status != "active" {
		return nil, apperr.NewUnauthorized("account is not active")
	}

	token, err := uc.tokens.GenerateAccessToken(outbound.TokenClaims{
		UserID: profile.ID,
		Email:  profile.Email,
	})
	if err != nil {
		return nil, apperr.NewUnknown("failed to issue token", err)
	}

	return &inbound.LoginResult{Token: token, User: profile}, nil
}
