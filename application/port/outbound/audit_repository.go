package outbound

import (
	"context"

	"github.com/swairua/medplus/domain/entity"
)

// AuditFilter bounds an audit query to a recent window with an optional
// free-text match across action, entity type, record id, actor email and
// the details payload.
type AuditFilter struct {
	Text  string
	Limit int
}

// AuditRepository is the append-only store for audit records. Append must
// never mutate or delete existing records.
type AuditRepository interface {
	Append(ctx context.Context, record *entity.AuditRecord) error
	Query(ctx context.Context, filter AuditFilter) ([]entity.AuditRecord, error)
}
