package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userRoleColumns = `id, user_id, role_id, assigned_at, assigned_by`

type userRoleRepository struct {
	db DBTX
}

// NewUserRoleRepository creates a new user role repository
func NewUserRoleRepository(db DBTX) UserRoleRepository {
	return &userRoleRepository{db: db}
}

func scanUserRole(row pgx.Row) (domain.UserRole, error) {
	var ur domain.UserRole
	err := row.Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.AssignedAt, &ur.AssignedBy)
	return ur, err
}

func (r *userRoleRepository) Create(ctx context.Context, assignment domain.UserRole) (domain.UserRole, error) {
	created, err := scanUserRole(r.db.QueryRow(ctx,
		`INSERT INTO user_roles (id, user_id, role_id, assigned_at, assigned_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userRoleColumns,
		assignment.ID, assignment.UserID, assignment.RoleID, assignment.AssignedAt, assignment.AssignedBy,
	))
	if err != nil {
		return domain.UserRole{}, translateError("assign role", err)
	}
	return created, nil
}

func (r *userRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.UserRole, error) {
	ur, err := scanUserRole(r.db.QueryRow(ctx, `SELECT `+userRoleColumns+` FROM user_roles WHERE id = $1`, id))
	if err != nil {
		return domain.UserRole{}, translateError("get user role", err)
	}
	return ur, nil
}

func (r *userRoleRepository) List(ctx context.Context) ([]domain.UserRole, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userRoleColumns+` FROM user_roles ORDER BY assigned_at DESC`)
	if err != nil {
		return nil, translateError("list user roles", err)
	}
	defer rows.Close()

	assignments := []domain.UserRole{}
	for rows.Next() {
		ur, err := scanUserRole(rows)
		if err != nil {
			return nil, translateError("scan user role", err)
		}
		assignments = append(assignments, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate user roles", err)
	}
	return assignments, nil
}

func (r *userRoleRepository) Exists(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)`,
		userID, roleID,
	).Scan(&exists)
	if err != nil {
		return false, translateError("check user role", err)
	}
	return exists, nil
}

// ListRolesForUser returns the roles assigned to the user, without permissions.
func (r *userRoleRepository) ListRolesForUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.name, r.description, r.is_active, r.created_at, r.updated_at
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, translateError("list roles for user", err)
	}
	return collectRoles(rows)
}

func (r *userRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE id = $1`, id)
	if err != nil {
		return translateError("delete user role", err)
	}
	return checkAffected("delete user role", tag)
}
