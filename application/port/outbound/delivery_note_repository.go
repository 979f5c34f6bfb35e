package outbound

import (
	"context"
	"errors"

	"github.com/swairua/medplus/domain/entity"
)

var (
	ErrDeliveryNoteNotFound = errors.New("delivery note not found")
	ErrInventoryItemMissing = errors.New("inventory item missing")
)

// DeliveryNoteRepository exposes the delivery note aggregate.
//
// DeleteWithReversal enumerates the note's stock movements under the note
// lock, applies the inverse adjustment per inventory item and removes the
// note with its dependent rows as a single all-or-nothing unit, so the
// reversed set and the deleted set are always the same rows. It reports
// how many movements were reversed. Concurrent deletes of the same note
// are serialized by the store; the loser gets ErrDeliveryNoteNotFound. An
// adjustment that targets a missing inventory row aborts the whole unit
// with ErrInventoryItemMissing and nothing is applied.
type DeliveryNoteRepository interface {
	FindByID(ctx context.Context, id string) (*entity.DeliveryNote, error)
	DeleteWithReversal(ctx context.Context, noteID string) (reversed int, err error)
}
