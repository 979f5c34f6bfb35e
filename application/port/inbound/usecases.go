package inbound

import (
	"context"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
)

// Authorizer resolves a bearer credential to a Principal and checks it
// against the privilege a mutation requires. It is read-only and safe for
// concurrent use; every call resolves the role fresh from durable storage.
type Authorizer interface {
	Authorize(ctx context.Context, credential string, required entity.Role) (*entity.Principal, error)
}

// ProvisionUserRequest carries the fields of a provisioning call. Role and
// Password are optional; Role is vetted against the closed role set and
// never trusted as-is.
type ProvisionUserRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role,omitempty"`
	Password   string `json:"password,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
}

// ProvisionUserResult reports a completed provisioning. GeneratedPassword
// is set exactly once and only when the secret was generated rather than
// supplied by the caller.
type ProvisionUserResult struct {
	User              *entity.User `json:"user"`
	GeneratedPassword string       `json:"password,omitempty"`
}

type ProvisioningUseCase interface {
	ProvisionUser(ctx context.Context, actor *entity.Principal, req ProvisionUserRequest) (*ProvisionUserResult, error)
}

// DeleteDeliveryNoteResult reports a completed deletion with the number of
// stock movements that were reversed.
type DeleteDeliveryNoteResult struct {
	ReversedMovements int `json:"reversed_movements"`
}

type DeliveryUseCase interface {
	DeleteDeliveryNote(ctx context.Context, actor *entity.Principal, noteID string) (*DeleteDeliveryNoteResult, error)
}

// AuditQuery is the read-only surface over recorded audit events.
type AuditQuery interface {
	Recent(ctx context.Context, filter outbound.AuditFilter) ([]entity.AuditRecord, error)
}

// LoginResult carries the issued credential and the resolved profile.
type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
