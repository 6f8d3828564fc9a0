package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FishingAreaRepository defines the interface for fishing area operations
type FishingAreaRepository interface {
	Create(ctx context.Context, area domain.FishingArea) (domain.FishingArea, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.FishingArea, error)
	GetByCode(ctx context.Context, code string) (domain.FishingArea, error)
	List(ctx context.Context) ([]domain.FishingArea, error)
	Update(ctx context.Context, area domain.FishingArea) (domain.FishingArea, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShipRepository defines the interface for ship operations
type ShipRepository interface {
	Create(ctx context.Context, ship domain.Ship) (domain.Ship, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ship, error)
	GetByRegistrationNumber(ctx context.Context, registrationNumber string) (domain.Ship, error)
	List(ctx context.Context) ([]domain.Ship, error)
	Update(ctx context.Context, ship domain.Ship) (domain.Ship, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PermissionRepository exposes the seeded permission catalogue.
type PermissionRepository interface {
	List(ctx context.Context) ([]domain.Permission, error)
}

// RoleRepository defines the interface for role operations. Returned roles
// carry their permissions.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) (domain.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Role, error)
	GetByName(ctx context.Context, name string) (domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) (domain.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
}

// UserRoleRepository manages role assignments.
type UserRoleRepository interface {
	Create(ctx context.Context, assignment domain.UserRole) (domain.UserRole, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.UserRole, error)
	List(ctx context.Context) ([]domain.UserRole, error)
	Exists(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	ListRolesForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleGroupRepository defines the interface for role group operations.
type RoleGroupRepository interface {
	Create(ctx context.Context, group domain.RoleGroup) (domain.RoleGroup, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.RoleGroup, error)
	List(ctx context.Context) ([]domain.RoleGroup, error)
	Update(ctx context.Context, group domain.RoleGroup) (domain.RoleGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetRoles(ctx context.Context, groupID uuid.UUID, roleIDs []uuid.UUID) error
}

// UserRepository defines the interface for user account operations.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// ProfileRepository stores owner and captain profiles and answers the
// name-based lookups used when resolving spreadsheet references.
type ProfileRepository interface {
	CreateOwner(ctx context.Context, profile domain.OwnerProfile) (domain.OwnerProfile, error)
	CreateCaptain(ctx context.Context, profile domain.CaptainProfile) (domain.CaptainProfile, error)
	GetOwner(ctx context.Context, id uuid.UUID) (domain.OwnerProfile, error)
	GetCaptain(ctx context.Context, id uuid.UUID) (domain.CaptainProfile, error)
	GetOwnerByUser(ctx context.Context, userID uuid.UUID) (domain.OwnerProfile, error)
	GetCaptainByUser(ctx context.Context, userID uuid.UUID) (domain.CaptainProfile, error)
	ListOwnersByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.OwnerProfile, error)
	ListCaptainsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CaptainProfile, error)

	FindOwnersByPersonName(ctx context.Context, first, last string) ([]domain.OwnerProfile, error)
	FindOwnersByCompanyName(ctx context.Context, name string) ([]domain.OwnerProfile, error)
	FindCaptainsByPersonName(ctx context.Context, first, last string) ([]domain.CaptainProfile, error)
	FindCaptainsByNameToken(ctx context.Context, token string) ([]domain.CaptainProfile, error)
}

// ImportLogRepository stores import row errors for observability.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, resource string, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error)
}
