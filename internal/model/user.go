package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole enumerates the roles recognized by the platform.
type UserRole string

const (
	RoleEmployee    UserRole = "employee"
	RoleTenantAdmin UserRole = "tenant_admin"
	RoleSuperAdmin  UserRole = "super_admin"
)

// LoginRequest is the payload for email + password authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// User represents a platform user within a tenant.
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
