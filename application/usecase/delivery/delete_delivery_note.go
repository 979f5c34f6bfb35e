package delivery

import (
	"context"
	"errors"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/application/usecase/audit"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/pkg/apperr"
)

// DeleteDeliveryNoteUseCase removes a delivery note and reverses its
// inventory effects as one all-or-nothing unit. The store enumerates and
// reverses the movements under the note lock, so a failure leaves the
// note and its movements intact and retryable.
type DeleteDeliveryNoteUseCase struct {
	notes    outbound.DeliveryNoteRepository
	recorder *audit.Recorder
	log      logger.Logger
}

func NewDeleteDeliveryNoteUseCase(notes outbound.DeliveryNoteRepository, recorder *audit.Recorder, log logger.Logger) *DeleteDeliveryNoteUseCase {
	return &DeleteDeliveryNoteUseCase{notes: notes, recorder: recorder, log: log}
}

func (uc *DeleteDeliveryNoteUseCase) DeleteDeliveryNote(ctx context.Context, actor *entity.Principal, noteID string) (*inbound.DeleteDeliveryNoteResult, error) {
	if noteID == "" {
		return nil, apperr.NewInvalidInput("delivery note id is required")
	}

	note, err := uc.notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, outbound.ErrDeliveryNoteNotFound) {
			// Re-deleting an already-deleted note is not an internal error;
			// the caller re-checks state and moves on.
			return nil, apperr.NewNotFound("delivery note not found")
		}
		return nil, uc.fail(ctx, actor, noteID, nil, err)
	}

	reversed, err := uc.notes.DeleteWithReversal(ctx, noteID)
	if err != nil {
		switch {
		case errors.Is(err, outbound.ErrDeliveryNoteNotFound):
			// Lost a concurrent delete of the same note. Nothing was
			// applied on this side, so no failure audit either.
			return nil, apperr.NewNotFound("delivery note not found")
		case errors.Is(err, outbound.ErrInventoryItemMissing):
			ae := apperr.NewConflict("an inventory item referenced by this note no longer exists")
			uc.recordOutcome(ctx, actor, note, noteID, "failure", map[string]interface{}{"error": ae.Message})
			return nil, ae
		default:
			return nil, uc.fail(ctx, actor, noteID, note, err)
		}
	}

	uc.recordOutcome(ctx, actor, note, noteID, "success", map[string]interface{}{
		"delivery_number":    note.DeliveryNumber,
		"items":              note.ItemCount,
		"reversed_movements": reversed,
	})

	uc.log.Info(ctx, "delivery note deleted", map[string]interface{}{
		"delivery_note_id":   noteID,
		"reversed_movements": reversed,
	})

	return &inbound.DeleteDeliveryNoteResult{ReversedMovements: reversed}, nil
}

// fail classifies an unexpected store error, records the failed attempt
// and returns the classified error.
func (uc *DeleteDeliveryNoteUseCase) fail(ctx context.Context, actor *entity.Principal, noteID string, note *entity.DeliveryNote, err error) error {
	var ae *apperr.AppError
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ae = apperr.NewTimeout("delivery note deletion timed out")
	} else {
		ae = apperr.NewUpstream("delivery note deletion failed", err)
	}
	uc.recordOutcome(ctx, actor, note, noteID, "failure", map[string]interface{}{"error": err.Error()})
	return ae
}

func (uc *DeleteDeliveryNoteUseCase) recordOutcome(ctx context.Context, actor *entity.Principal, note *entity.DeliveryNote, noteID, outcome string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["outcome"] = outcome
	companyID := ""
	if note != nil {
		companyID = note.CompanyID
	}
	uc.recorder.Record(ctx, actor, entity.AuditActionDelete, entity.EntityTypeDeliveryNote, noteID, companyID, details)
}
