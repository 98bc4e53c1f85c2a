package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleParent UserRole = "PARENT"
	RoleStaff  UserRole = "STAFF"
	RoleAdmin  UserRole = "ADMIN"
)

// IsStaff reports whether the role may act on behalf of the daycare.
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleParent || r.IsStaff()
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Role            *UserRole
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
