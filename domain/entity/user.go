package entity

import (
	"time"
)

// Role is the closed set of privilege levels a profile can hold.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAccountant   Role = "accountant"
	RoleStockManager Role = "stock_manager"
	RoleUser         Role = "user"
)

// ValidRole reports whether r is one of the known privilege levels.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleStockManager, RoleUser:
		return true
	}
	return false
}

// User is the profile row backing an account. The authentication identity
// lives in a separate table and shares the same ID.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	Status     string    `json:"status"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	CompanyID  string    `json:"company_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUser(id, email, fullName string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Principal is the authenticated caller of a privileged mutation. It is
// resolved fresh for every mutation attempt; the role always comes from
// durable storage, never from the credential itself.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}
