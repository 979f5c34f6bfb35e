package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/pkg/apperr"
)

// Mock implementations
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TokenClaims), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func TestAuthorize_AdminAllowed(t *testing.T) {
	ctx := context.Background()

	mockTokens := new(MockTokenService)
	mockProfiles := new(MockProfileRepository)

	mockTokens.On("ValidateAccessToken", "valid-token").Return(&outbound.TokenClaims{
		UserID: "user-1",
		Email:  "admin@example.com",
	}, nil)
	mockProfiles.On("FindByID", ctx, "user-1").Return(&entity.User{
		ID:        "user-1",
		Email:     "admin@example.com",
		Role:      entity.RoleAdmin,
		CompanyID: "co-1",
	}, nil)

	authorizer := NewAuthorizer(mockTokens, mockProfiles)

	principal, err := authorizer.Authorize(ctx, "valid-token", entity.RoleAdmin)

	assert.NoError(t, err)
	assert.NotNil(t, principal)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, entity.RoleAdmin, principal.Role)
	assert.Equal(t, "co-1", principal.CompanyID)
}

func TestAuthorize_EmptyCredential(t *testing.T) {
	authorizer := NewAuthorizer(new(MockTokenService), new(MockProfileRepository))

	principal, err := authorizer.Authorize(context.Background(), "", entity.RoleAdmin)

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorize_InvalidToken(t *testing.T) {
	mockTokens := new(MockTokenService)
	mockProfiles := new(MockProfileRepository)

	mockTokens.On("ValidateAccessToken", "garbage").Return(nil, errors.New("invalid token"))

	authorizer := NewAuthorizer(mockTokens, mockProfiles)

	principal, err := authorizer.Authorize(context.Background(), "garbage", entity.RoleAdmin)

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	mockProfiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAuthorize_MissingProfileDenies(t *testing.T) {
	ctx := context.Background()

	mockTokens := new(MockTokenService)
	mockProfiles := new(MockProfileRepository)

	mockTokens.On("ValidateAccessToken", "orphan-token").Return(&outbound.TokenClaims{
		UserID: "ghost",
		Email:  "ghost@example.com",
	}, nil)
	mockProfiles.On("FindByID", ctx, "ghost").Return(nil, outbound.ErrProfileNotFound)

	authorizer := NewAuthorizer(mockTokens, mockProfiles)

	principal, err := authorizer.Authorize(ctx, "orphan-token", entity.RoleAdmin)

	assert.Nil(t, principal)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorize_WrongRoleForbidden(t *testing.T) {
	ctx := context.Background()

	mockTokens := new(MockTokenService)
	mockProfiles := new(MockProfileRepository)

	mockTokens.On("ValidateAccessToken", "user-token").Return(&outbound.TokenClaims{
		UserID: "user-2",
		Email:  "user@example.com",
	}, nil)
	mockProfiles.On("FindByID", ctx, "user-2").Return(&entity.User{
		ID:    "user-2",
		Email: "user@example.com",
		Role:  entity.RoleAccountant,
	}, nil)

	authorizer := NewAuthorizer(mockTokens, mockProfiles)

	principal, err := authorizer.Authorize(ctx, "user-token", entity.RoleAdmin)

	assert.ErrorIs(t, err, apperr.ErrForbidden)
	// The resolved principal still comes back so the caller can record who
	// was denied.
	assert.NotNil(t, principal)
	assert.Equal(t, "user@example.com", principal.Email)
}

func TestAuthorize_RoleComesFromStoreEveryCall(t *testing.T) {
	ctx := context.Background()

	mockTokens := new(MockTokenService)
	mockProfiles := new(MockProfileRepository)

	mockTokens.On("ValidateAccessToken", "demoted-token").Return(&outbound.TokenClaims{
		UserID: "user-3",
		Email:  "demoted@example.com",
	}, nil)
	// The profile was demoted after the token was issued; the stored role
	// wins.
	mockProfiles.On("FindByID", ctx, "user-3").Return(&entity.User{
		ID:    "user-3",
		Email: "demoted@example.com",
		Role:  entity.RoleUser,
	}, nil)

	authorizer := NewAuthorizer(mockTokens, mockProfiles)

	_, err := authorizer.Authorize(ctx, "demoted-token", entity.RoleAdmin)

	assert.ErrorIs(t, err, apperr.ErrForbidden)
	mockProfiles.AssertNumberOfCalls(t, "FindByID", 1)
}
