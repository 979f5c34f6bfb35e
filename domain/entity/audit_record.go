package entity

import "time"

// Audit actions recorded for privileged mutations.
const (
	AuditActionCreate = "create"
	AuditActionDelete = "delete"
	AuditActionDenied = "denied"
)

// Audited entity types.
const (
	EntityTypeDeliveryNote = "delivery_note"
	EntityTypeUser         = "user"
)

// AuditRecord is an immutable, append-only log entry describing one
// privileged mutation attempt and its outcome. Records are never updated
// or deleted by this service.
type AuditRecord struct {
	ID          string                 `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	RecordID    string                 `json:"record_id"`
	ActorEmail  string                 `json:"actor_email,omitempty"`
	ActorUserID string                 `json:"actor_user_id,omitempty"`
	CompanyID   string                 `json:"company_id,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}
