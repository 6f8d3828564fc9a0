package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a named capability that can be granted to roles.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Codename    string    `json:"codename"`
	ContentType string    `json:"content_type"`
}

// Role groups permissions under a unique name.
type Role struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewRole creates a new role with immutable pattern
func NewRole(name, description string, isActive bool) Role {
	now := time.Now()
	return Role{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		IsActive:    isActive,
		Permissions: []Permission{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithFields returns a new role with updated attributes. Permissions are kept.
func (r Role) WithFields(name, description string, isActive bool) Role {
	return Role{
		ID:          r.ID,
		Name:        name,
		Description: description,
		IsActive:    isActive,
		Permissions: r.Permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   time.Now(),
	}
}

// HasPermission reports whether the role grants the permission.
func (r Role) HasPermission(id uuid.UUID) bool {
	for _, p := range r.Permissions {
		if p.ID == id {
			return true
		}
	}
	return false
}

// UserRole assigns a role to a user.
type UserRole struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	RoleID     uuid.UUID  `json:"role_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	AssignedBy *uuid.UUID `json:"assigned_by"`
}

// NewUserRole creates an assignment stamped with the current time.
func NewUserRole(userID, roleID uuid.UUID, assignedBy *uuid.UUID) UserRole {
	return UserRole{
		ID:         uuid.New(),
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: time.Now(),
		AssignedBy: assignedBy,
	}
}

// RoleGroup bundles roles for easier management.
type RoleGroup struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	Roles       []Role    `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoleGroup creates a new role group with immutable pattern
func NewRoleGroup(name, description string, isActive bool) RoleGroup {
	now := time.Now()
	return RoleGroup{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		IsActive:    isActive,
		Roles:       []Role{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithFields returns a new role group with updated attributes.
func (g RoleGroup) WithFields(name, description string, isActive bool) RoleGroup {
	return RoleGroup{
		ID:          g.ID,
		Name:        name,
		Description: description,
		IsActive:    isActive,
		Roles:       g.Roles,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   time.Now(),
	}
}
