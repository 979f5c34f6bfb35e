package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) outbound.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, full_name, role, status, phone, department, position, company_id, created_at, updated_at`

func (r *profileRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "id")
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), "email")
}

func (r *profileRepository) scanOne(row *sql.Row, by string) (*entity.User, error) {
	var (
		user       entity.User
		phone      sql.NullString
		department sql.NullString
		position   sql.NullString
		companyID  sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.Status,
		&phone,
		&department,
		&position,
		&companyID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile by %s: %w", by, err)
	}

	user.Phone = phone.String
	user.Department = department.String
	user.Position = position.String
	user.CompanyID = companyID.String
	return &user, nil
}

func (r *profileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, fmt.Errorf("email cannot be empty")
	}

	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if email exists: %w", err)
	}
	return exists, nil
}

func (r *profileRepository) Upsert(ctx context.Context, user *entity.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("profile id is required")
	}

	query := `
		INSERT INTO profiles (id, email, full_name, role, status, phone, department, position, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			phone = EXCLUDED.phone,
			department = EXCLUDED.department,
			position = EXCLUDED.position,
			company_id = EXCLUDED.company_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.Role,
		user.Status,
		user.Phone,
		user.Department,
		user.Position,
		user.CompanyID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
