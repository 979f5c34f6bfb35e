package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) outbound.AuditRepository {
	return &auditRepository{db: db}
}

// Append inserts one record. The table has no update or delete path in
// this service; records are immutable once written.
func (r *auditRepository) Append(ctx context.Context, record *entity.AuditRecord) error {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, created_at, action, entity_type, record_id, actor_email, actor_user_id, company_id, details)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.CreatedAt,
		record.Action,
		record.EntityType,
		record.RecordID,
		record.ActorEmail,
		record.ActorUserID,
		record.CompanyID,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

func (r *auditRepository) Query(ctx context.Context, filter outbound.AuditFilter) ([]entity.AuditRecord, error) {
	query := `
		SELECT id, created_at, action, entity_type, COALESCE(record_id, ''), COALESCE(actor_email, ''), COALESCE(actor_user_id, ''), COALESCE(company_id, ''), details
		FROM audit_logs
	`
	args := []interface{}{}

	if filter.Text != "" {
		query += `
		WHERE action ILIKE $1
		   OR entity_type ILIKE $1
		   OR record_id ILIKE $1
		   OR actor_email ILIKE $1
		   OR details::text ILIKE $1
	`
		args = append(args, "%"+filter.Text+"%")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []entity.AuditRecord
	for rows.Next() {
		var (
			record  entity.AuditRecord
			details []byte
		)
		err := rows.Scan(
			&record.ID,
			&record.CreatedAt,
			&record.Action,
			&record.EntityType,
			&record.RecordID,
			&record.ActorEmail,
			&record.ActorUserID,
			&record.CompanyID,
			&details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &record.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit records: %w", err)
	}
	return records, nil
}
