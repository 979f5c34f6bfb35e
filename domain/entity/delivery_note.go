package entity

import "time"

// Stock movement directions. A confirmed delivery note produces one "out"
// movement per line item; reversing it puts the quantity back.
const (
	MovementTypeIn  = "in"
	MovementTypeOut = "out"
)

// DeliveryNote is the header of a goods delivery. Read-only to this
// service except for deletion.
type DeliveryNote struct {
	ID             string    `json:"id"`
	DeliveryNumber string    `json:"delivery_number"`
	DeliveryDate   time.Time `json:"delivery_date"`
	Status         string    `json:"status"`
	CustomerName   string    `json:"customer_name"`
	CompanyID      string    `json:"company_id,omitempty"`
	ItemCount      int       `json:"item_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeliveryNoteItem is a single line of a delivery note. Every item
// corresponds to exactly one stock movement applied when the note was
// created or confirmed.
type DeliveryNoteItem struct {
	ID              string  `json:"id"`
	DeliveryNoteID  string  `json:"delivery_note_id"`
	InventoryItemID string  `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
}

// StockMovement is a directional quantity change applied to an inventory
// item as a side effect of a delivery note.
type StockMovement struct {
	ID              string    `json:"id"`
	DeliveryNoteID  string    `json:"delivery_note_id"`
	InventoryItemID string    `json:"inventory_item_id"`
	MovementType    string    `json:"movement_type"`
	Quantity        float64   `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReversalDelta is the signed adjustment that undoes this movement. An
// outbound movement of 5 yields +5; an inbound movement of 5 yields -5.
// Applying the deltas of all movements of a note restores the inventory
// levels that existed before the note.
func (m StockMovement) ReversalDelta() float64 {
	if m.MovementType == MovementTypeOut {
		return m.Quantity
	}
	return -m.Quantity
}

// InventoryAdjustment is one signed quantity change to apply to an
// inventory item when a delivery note is reversed.
type InventoryAdjustment struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Delta           float64 `json:"delta"`
}

// AggregateReversals folds a note's movements into one signed delta per
// inventory item, in first-seen order. Applying the deltas restores the
// quantities that existed before the note.
func AggregateReversals(movements []StockMovement) []InventoryAdjustment {
	deltas := make(map[string]float64, len(movements))
	order := make([]string, 0, len(movements))
	for _, m := range movements {
		if _, seen := deltas[m.InventoryItemID]; !seen {
			order = append(order, m.InventoryItemID)
		}
		deltas[m.InventoryItemID] += m.ReversalDelta()
	}

	adjustments := make([]InventoryAdjustment, 0, len(order))
	for _, itemID := range order {
		adjustments = append(adjustments, InventoryAdjustment{
			InventoryItemID: itemID,
			Delta:           deltas[itemID],
		})
	}
	return adjustments
}

// InventoryItem is the shared mutable state the reversal touches. All
// quantity changes go through the store's atomic update, never through
// read-modify-write in application code.
type InventoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}
