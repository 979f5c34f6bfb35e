package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/service/logger"
)

// maxQueryWindow bounds the read surface to a fixed recent window.
const maxQueryWindow = 200

// Recorder appends audit records for privileged mutation attempts and
// serves the read-only query surface over them.
type Recorder struct {
	repo outbound.AuditRepository
	log  logger.Logger
}

func NewRecorder(repo outbound.AuditRepository, log logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record appends one audit record. It is fire-and-forget: a failed write
// never fails the mutation whose outcome it describes, but it is escalated
// through the logger rather than dropped.
func (r *Recorder) Record(ctx context.Context, actor *entity.Principal, action, entityType, recordID, companyID string, details map[string]interface{}) {
	record := &entity.AuditRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Action:     action,
		EntityType: entityType,
		RecordID:   recordID,
		CompanyID:  companyID,
		Details:    details,
	}
	if actor != nil {
		record.ActorEmail = actor.Email
		record.ActorUserID = actor.UserID
		if record.CompanyID == "" {
			record.CompanyID = actor.CompanyID
		}
	}

	// The mutation's request context may already be cancelled by the time
	// the outcome is recorded; the audit write must still happen.
	if err := r.repo.Append(context.WithoutCancel(ctx), record); err != nil {
		r.log.Error(ctx, "audit write failed", err, map[string]interface{}{
			"action":      action,
			"entity_type": entityType,
			"record_id":   recordID,
			"actor_email": record.ActorEmail,
		})
	}
}

// Recent returns audit records from the fixed recent window, newest first.
func (r *Recorder) Recent(ctx context.Context, filter outbound.AuditFilter) ([]entity.AuditRecord, error) {
	if filter.Limit <= 0 || filter.Limit > maxQueryWindow {
		filter.Limit = maxQueryWindow
	}
	return r.repo.Query(ctx, filter)
}
