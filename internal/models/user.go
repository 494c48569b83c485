package models

import "time"

// UserRole represents the available roles for the RBAC system. Program chairs
// are not a role: chairmanship is resolved per program.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleDean     UserRole = "DEAN"
	RoleLecturer UserRole = "LECTURER"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDean, RoleLecturer:
		return true
	default:
		return false
	}
}

// User is a staff member stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	ProgramID    *string    `db:"program_id" json:"program_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing staff.
type UserFilter struct {
	Role      *UserRole
	ProgramID string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
