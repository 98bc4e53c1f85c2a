package dto

import "github.com/noah-isme/daycare-api/internal/models"

// CreateUserRequest registers a parent, staff member or admin.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required,max=120"`
	Phone    *string         `json:"phone,omitempty" validate:"omitempty,e164"`
	Role     models.UserRole `json:"role" validate:"required,oneof=PARENT STAFF ADMIN"`
	Password string          `json:"password" validate:"required,min=8"`
}

// UpdateRoleRequest changes the role of a user.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=PARENT STAFF ADMIN"`
}

// AuditQuery selects audit entries for GET /audit-logs.
type AuditQuery struct {
	Resource   string `form:"resource" validate:"required,oneof=auth users children announcements day_summaries"`
	ResourceID string `form:"resource_id"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
}
