package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
)

type deliveryNoteRepository struct {
	db *sql.DB
}

func NewDeliveryNoteRepository(db *sql.DB) outbound.DeliveryNoteRepository {
	return &deliveryNoteRepository{db: db}
}

func (r *deliveryNoteRepository) FindByID(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	query := `
		SELECT n.id, n.delivery_number, n.delivery_date, n.status, n.customer_name, COALESCE(n.company_id, ''), n.created_at,
		       COUNT(i.id)
		FROM delivery_notes n
		LEFT JOIN delivery_note_items i ON i.delivery_note_id = n.id
		WHERE n.id = $1
		GROUP BY n.id
	`

	var note entity.DeliveryNote
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.DeliveryNumber,
		&note.DeliveryDate,
		&note.Status,
		&note.CustomerName,
		&note.CompanyID,
		&note.CreatedAt,
		&note.ItemCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrDeliveryNoteNotFound
		}
		return nil, fmt.Errorf("failed to find delivery note: %w", err)
	}
	return &note, nil
}

// DeleteWithReversal runs the whole reversal-and-delete in one
// transaction. The row lock on the note serializes concurrent deletes of
// the same entity; the transaction that loses the race sees no row and
// reports ErrDeliveryNoteNotFound without touching inventory. Movements
// are enumerated after the lock, inside the same transaction, so the set
// of movements reversed and the set deleted are the same rows even when a
// movement is appended concurrently.
func (r *deliveryNoteRepository) DeleteWithReversal(ctx context.Context, noteID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM delivery_notes WHERE id = $1 FOR UPDATE`, noteID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, outbound.ErrDeliveryNoteNotFound
		}
		return 0, fmt.Errorf("failed to lock delivery note: %w", err)
	}

	movements, err := listMovementsTx(ctx, tx, noteID)
	if err != nil {
		return 0, err
	}
	adjustments := entity.AggregateReversals(movements)

	// Inventory changes go through the store's atomic update, never
	// read-modify-write, so concurrent deliveries cannot lose updates.
	for _, adj := range adjustments {
		result, err := tx.ExecContext(ctx,
			`UPDATE inventory_items SET quantity = quantity + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			adj.Delta, adj.InventoryItemID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to apply inventory adjustment: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return 0, outbound.ErrInventoryItemMissing
		}
	}

	// Dependent rows go only after every adjustment succeeded.
	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_movements WHERE delivery_note_id = $1`, noteID); err != nil {
		return 0, fmt.Errorf("failed to delete stock movements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_note_items WHERE delivery_note_id = $1`, noteID); err != nil {
		return 0, fmt.Errorf("failed to delete delivery note items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_notes WHERE id = $1`, noteID); err != nil {
		return 0, fmt.Errorf("failed to delete delivery note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return len(movements), nil
}

func listMovementsTx(ctx context.Context, tx *sql.Tx, noteID string) ([]entity.StockMovement, error) {
	query := `
		SELECT id, delivery_note_id, inventory_item_id, movement_type, quantity, created_at
		FROM stock_movements
		WHERE delivery_note_id = $1
		ORDER BY created_at
	`

	rows, err := tx.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		err := rows.Scan(&m.ID, &m.DeliveryNoteID, &m.InventoryItemID, &m.MovementType, &m.Quantity, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock movements: %w", err)
	}
	return movements, nil
}
