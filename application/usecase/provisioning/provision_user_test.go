package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/application/usecase/audit"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/pkg/apperr"
)

// Mock implementations
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

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateIdentity(ctx context.Context, email, passwordHash, fullName string) (string, error) {
	args := m.Called(ctx, email, passwordHash, fullName)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) Credentials(ctx context.Context, email string) (*outbound.IdentityCredential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.IdentityCredential), args.Error(1)
}

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordService) VerifyPassword(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

type MockSecretGenerator struct {
	mock.Mock
}

func (m *MockSecretGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, record *entity.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) Query(ctx context.Context, filter outbound.AuditFilter) ([]entity.AuditRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuditRecord), args.Error(1)
}

type fixture struct {
	profiles   *MockProfileRepository
	identities *MockIdentityProvider
	passwords  *MockPasswordService
	secrets    *MockSecretGenerator
	auditRepo  *MockAuditRepository
	useCase    *ProvisionUserUseCase
}

func newFixture(serviceCredentialSet bool) *fixture {
	f := &fixture{
		profiles:   new(MockProfileRepository),
		identities: new(MockIdentityProvider),
		passwords:  new(MockPasswordService),
		secrets:    new(MockSecretGenerator),
		auditRepo:  new(MockAuditRepository),
	}
	log := logger.New(logger.Config{Level: "panic", Format: "json"})
	f.useCase = NewProvisionUserUseCase(
		f.profiles,
		f.identities,
		f.passwords,
		f.secrets,
		audit.NewRecorder(f.auditRepo, log),
		log,
		serviceCredentialSet,
	)
	return f
}

func adminActor() *entity.Principal {
	return &entity.Principal{UserID: "admin-1", Email: "admin@example.com", Role: entity.RoleAdmin}
}

func TestProvisionUser_GeneratedPasswordIsReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
	f.secrets.On("Generate").Return("aB3!xY9@kL2$", nil)
	f.passwords.On("HashPassword", "aB3!xY9@kL2$").Return("hashed", nil)
	f.identities.On("CreateIdentity", ctx, "new@example.com", "hashed", "New User").Return("uid-1", nil)
	f.profiles.On("Upsert", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	f.auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(r *entity.AuditRecord) bool {
		return r.Action == entity.AuditActionCreate &&
			r.EntityType == entity.EntityTypeUser &&
			r.RecordID == "uid-1" &&
			r.Details["outcome"] == "success" &&
			r.Details["password_generated"] == true
	})).Return(nil).Once()

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "new@example.com",
		FullName: "New User",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "aB3!xY9@kL2$", result.GeneratedPassword)
	assert.Equal(t, "uid-1", result.User.ID)
	assert.Equal(t, entity.RoleUser, result.User.Role)
	assert.Equal(t, "active", result.User.Status)

	f.profiles.AssertExpectations(t)
	f.identities.AssertExpectations(t)
	f.auditRepo.AssertExpectations(t)
}

func TestProvisionUser_SuppliedPasswordIsNeverEchoed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
	f.passwords.On("HashPassword", "CallerChose1!").Return("hashed", nil)
	f.identities.On("CreateIdentity", ctx, "new@example.com", "hashed", "New User").Return("uid-2", nil)
	f.profiles.On("Upsert", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "new@example.com",
		FullName: "New User",
		Password: "CallerChose1!",
		Role:     "accountant",
	})

	assert.NoError(t, err)
	assert.Empty(t, result.GeneratedPassword)
	assert.Equal(t, entity.RoleAccountant, result.User.Role)
	f.secrets.AssertNotCalled(t, "Generate")
}

func TestProvisionUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)
	f.auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(r *entity.AuditRecord) bool {
		return r.Details["outcome"] == "failure"
	})).Return(nil).Once()

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "taken@example.com",
		FullName: "Taken",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	f.identities.AssertNotCalled(t, "CreateIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.auditRepo.AssertExpectations(t)
}

func TestProvisionUser_IdentityRaceReportsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "racer@example.com").Return(false, nil)
	f.secrets.On("Generate").Return("aB3!xY9@kL2$", nil)
	f.passwords.On("HashPassword", mock.Anything).Return("hashed", nil)
	f.identities.On("CreateIdentity", ctx, "racer@example.com", "hashed", "Racer").Return("", outbound.ErrIdentityExists)
	f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "racer@example.com",
		FullName: "Racer",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	f.profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestProvisionUser_ProfileFailureIsPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "half@example.com").Return(false, nil)
	f.secrets.On("Generate").Return("aB3!xY9@kL2$", nil)
	f.passwords.On("HashPassword", mock.Anything).Return("hashed", nil)
	f.identities.On("CreateIdentity", ctx, "half@example.com", "hashed", "Half Done").Return("uid-partial", nil)
	f.profiles.On("Upsert", ctx, mock.AnythingOfType("*entity.User")).Return(errors.New("profiles table unavailable"))
	f.auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(r *entity.AuditRecord) bool {
		return r.Details["outcome"] == "partial_failure" &&
			r.Details["identity_id"] == "uid-partial"
	})).Return(nil).Once()

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "half@example.com",
		FullName: "Half Done",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrPartialFailure)
	// The created identity id must reach the operator for reconciliation.
	assert.Contains(t, err.Error(), "uid-partial")
	f.auditRepo.AssertExpectations(t)
}

func TestProvisionUser_InvalidRoleRejected(t *testing.T) {
	f := newFixture(true)

	result, err := f.useCase.ProvisionUser(context.Background(), adminActor(), inbound.ProvisionUserRequest{
		Email:    "new@example.com",
		FullName: "New User",
		Role:     "superadmin",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	f.profiles.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestProvisionUser_MissingFields(t *testing.T) {
	f := newFixture(true)

	tests := []struct {
		name string
		req  inbound.ProvisionUserRequest
	}{
		{"missing email", inbound.ProvisionUserRequest{FullName: "No Email"}},
		{"missing full name", inbound.ProvisionUserRequest{Email: "x@example.com"}},
		{"malformed email", inbound.ProvisionUserRequest{Email: "not-an-email", FullName: "Bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.useCase.ProvisionUser(context.Background(), adminActor(), tt.req)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestProvisionUser_EmailIsNormalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	f.profiles.On("ExistsByEmail", ctx, "mixed@example.com").Return(false, nil)
	f.secrets.On("Generate").Return("aB3!xY9@kL2$", nil)
	f.passwords.On("HashPassword", mock.Anything).Return("hashed", nil)
	f.identities.On("CreateIdentity", ctx, "mixed@example.com", "hashed", "Mixed Case").Return("uid-3", nil)
	f.profiles.On("Upsert", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "mixed@example.com"
	})).Return(nil)
	f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "  Mixed@Example.COM ",
		FullName: "Mixed Case",
	})

	assert.NoError(t, err)
	f.profiles.AssertExpectations(t)
}

func TestProvisionUser_DeadlineExceededIsTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	f := newFixture(true)

	f.profiles.On("ExistsByEmail", mock.Anything, "slow@example.com").Return(false, context.DeadlineExceeded)
	f.auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(r *entity.AuditRecord) bool {
		return r.Details["outcome"] == "failure"
	})).Return(nil).Once()

	result, err := f.useCase.ProvisionUser(ctx, adminActor(), inbound.ProvisionUserRequest{
		Email:    "slow@example.com",
		FullName: "Slow Store",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrTimeout)
	assert.NotErrorIs(t, err, apperr.ErrUpstream)
	// The failed attempt is still recorded despite the expired context.
	f.auditRepo.AssertExpectations(t)
}

func TestProvisionUser_FailsClosedWithoutServiceCredential(t *testing.T) {
	f := newFixture(false)

	result, err := f.useCase.ProvisionUser(context.Background(), adminActor(), inbound.ProvisionUserRequest{
		Email:    "new@example.com",
		FullName: "New User",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	f.profiles.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	f.identities.AssertNotCalled(t, "CreateIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
