package provisioning

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/application/usecase/audit"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/pkg/apperr"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ProvisionUserUseCase creates an account in two sub-steps: the
// authentication identity first, the profile row second. A profile failure
// after the identity succeeded is a PartialFailure carrying the created
// identity id, so operators can reconcile instead of being told "success".
type ProvisionUserUseCase struct {
	profiles   outbound.ProfileRepository
	identities outbound.IdentityProvider
	passwords  outbound.PasswordService
	secrets    outbound.SecretGenerator
	recorder   *audit.Recorder
	log        logger.Logger

	// serviceCredentialSet gates the whole flow: without the privileged
	// backend credential no provisioning mutation runs at all.
	serviceCredentialSet bool
}

func NewProvisionUserUseCase(
	profiles outbound.ProfileRepository,
	identities outbound.IdentityProvider,
	passwords outbound.PasswordService,
	secrets outbound.SecretGenerator,
	recorder *audit.Recorder,
	log logger.Logger,
	serviceCredentialSet bool,
) *ProvisionUserUseCase {
	return &ProvisionUserUseCase{
		profiles:             profiles,
		identities:           identities,
		passwords:            passwords,
		secrets:              secrets,
		recorder:             recorder,
		log:                  log,
		serviceCredentialSet: serviceCredentialSet,
	}
}

func (uc *ProvisionUserUseCase) ProvisionUser(ctx context.Context, actor *entity.Principal, req inbound.ProvisionUserRequest) (*inbound.ProvisionUserResult, error) {
	if !uc.serviceCredentialSet {
		return nil, apperr.NewUpstream("provisioning disabled: service credential not configured", nil)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" || req.FullName == "" {
		return nil, apperr.NewInvalidInput("email and full name are required")
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, apperr.NewInvalidInput("invalid email format")
	}

	role, err := vetRole(req.Role)
	if err != nil {
		return nil, err
	}

	exists, err := uc.profiles.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, uc.fail(ctx, actor, req.Email, err)
	}
	if exists {
		ae := apperr.NewConflict("user with this email already exists")
		uc.record(ctx, actor, req.Email, "", map[string]interface{}{"outcome": "failure", "error": ae.Message})
		return nil, ae
	}

	password := req.Password
	generated := false
	if password == "" {
		password, err = uc.secrets.Generate()
		if err != nil {
			return nil, uc.fail(ctx, actor, req.Email, err)
		}
		generated = true
	}

	hash, err := uc.passwords.HashPassword(password)
	if err != nil {
		return nil, uc.fail(ctx, actor, req.Email, err)
	}

	identityID, err := uc.identities.CreateIdentity(ctx, req.Email, hash, req.FullName)
	if err != nil {
		// No profile row exists yet, so the system is still consistent.
		if errors.Is(err, outbound.ErrIdentityExists) {
			ae := apperr.NewConflict("user with this email already exists")
			uc.record(ctx, actor, req.Email, "", map[string]interface{}{"outcome": "failure", "error": ae.Message})
			return nil, ae
		}
		return nil, uc.fail(ctx, actor, req.Email, err)
	}

	user := entity.NewUser(identityID, req.Email, req.FullName, role)
	user.Phone = req.Phone
	user.Department = req.Department
	user.Position = req.Position
	user.CompanyID = req.CompanyID

	if err := uc.profiles.Upsert(ctx, user); err != nil {
		// Identity created, profile missing: partially provisioned. The
		// identity is left in place; the record carries its id for
		// reconciliation.
		ae := apperr.NewPartialFailure("identity created but profile step failed (identity id "+identityID+")", err)
		uc.record(ctx, actor, req.Email, identityID, map[string]interface{}{
			"outcome":     "partial_failure",
			"identity_id": identityID,
			"error":       err.Error(),
		})
		uc.log.Error(ctx, "user provisioning partially applied", err, map[string]interface{}{
			"email":       req.Email,
			"identity_id": identityID,
		})
		return nil, ae
	}

	uc.record(ctx, actor, req.Email, identityID, map[string]interface{}{
		"outcome":            "success",
		"role":               string(role),
		"password_generated": generated,
	})

	result := &inbound.ProvisionUserResult{User: user}
	if generated {
		// Surfaced exactly once; a caller-supplied secret is never echoed.
		result.GeneratedPassword = password
	}
	return result, nil
}

func (uc *ProvisionUserUseCase) fail(ctx context.Context, actor *entity.Principal, email string, err error) error {
	var ae *apperr.AppError
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ae = apperr.NewTimeout("user provisioning timed out")
	} else {
		ae = apperr.NewUpstream("user provisioning failed", err)
	}
	uc.record(ctx, actor, email, "", map[string]interface{}{"outcome": "failure", "error": err.Error()})
	return ae
}

func (uc *ProvisionUserUseCase) record(ctx context.Context, actor *entity.Principal, email, recordID string, details map[string]interface{}) {
	details["email"] = email
	uc.recorder.Record(ctx, actor, entity.AuditActionCreate, entity.EntityTypeUser, recordID, "", details)
}

// vetRole maps the caller-submitted role claim onto the closed role set.
// An empty claim defaults to the lowest privilege; anything outside the
// set is rejected rather than echoed into the profile.
func vetRole(raw string) (entity.Role, error) {
	if raw == "" {
		return entity.RoleUser, nil
	}
	role := entity.Role(raw)
	if !entity.ValidRole(role) {
		return "", apperr.NewInvalidInput("invalid role: " + raw)
	}
	return role, nil
}
