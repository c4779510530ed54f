package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles. Authorization checks switch on it
// exhaustively instead of comparing raw strings in handlers.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleRep     Role = "rep"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleRep:
		return true
	}
	return false
}

// CanManageSettings reports whether the role may mutate organization settings.
func (r Role) CanManageSettings() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	case RoleRep:
		return false
	}
	return false
}

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // Never serialize in JSON
	FullName       string    `json:"full_name" db:"full_name"`
	Role           Role      `json:"role" db:"role"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
