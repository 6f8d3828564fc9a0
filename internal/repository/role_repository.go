package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roleColumns = `id, name, description, is_active, created_at, updated_at`

type roleRepository struct {
	db DBTX
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db DBTX) RoleRepository {
	return &roleRepository{db: db}
}

func scanRole(row pgx.Row) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	role.Permissions = []domain.Permission{}
	return role, err
}

func (r *roleRepository) Create(ctx context.Context, role domain.Role) (domain.Role, error) {
	created, err := scanRole(r.db.QueryRow(ctx,
		`INSERT INTO roles (id, name, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+roleColumns,
		role.ID, role.Name, role.Description, role.IsActive, role.CreatedAt, role.UpdatedAt,
	))
	if err != nil {
		return domain.Role{}, translateError("create role", err)
	}
	return created, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return domain.Role{}, translateError("get role", err)
	}
	return r.withPermissions(ctx, role)
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (domain.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		return domain.Role{}, translateError("get role by name", err)
	}
	return r.withPermissions(ctx, role)
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, translateError("list roles", err)
	}
	roles, err := collectRoles(rows)
	if err != nil {
		return nil, err
	}

	byRole, err := r.permissionsFor(ctx, roleIDs(roles))
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if perms, ok := byRole[roles[i].ID]; ok {
			roles[i].Permissions = perms
		}
	}
	return roles, nil
}

func (r *roleRepository) Update(ctx context.Context, role domain.Role) (domain.Role, error) {
	updated, err := scanRole(r.db.QueryRow(ctx,
		`UPDATE roles SET name = $2, description = $3, is_active = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+roleColumns,
		role.ID, role.Name, role.Description, role.IsActive, role.UpdatedAt,
	))
	if err != nil {
		return domain.Role{}, translateError("update role", err)
	}
	return r.withPermissions(ctx, updated)
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return translateError("delete role", err)
	}
	return checkAffected("delete role", tag)
}

// SetPermissions replaces the role's permission set atomically. Unknown
// permission ids are skipped.
func (r *roleRepository) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id)
			 SELECT $1, p.id FROM permissions p WHERE p.id = ANY($2::uuid[])
			 ON CONFLICT DO NOTHING`,
			roleID, permissionIDs,
		)
		return err
	})
	if err != nil {
		return translateError("set role permissions", err)
	}
	return nil
}

func (r *roleRepository) withPermissions(ctx context.Context, role domain.Role) (domain.Role, error) {
	byRole, err := r.permissionsFor(ctx, []uuid.UUID{role.ID})
	if err != nil {
		return domain.Role{}, err
	}
	if perms, ok := byRole[role.ID]; ok {
		role.Permissions = perms
	}
	return role, nil
}

func (r *roleRepository) permissionsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Permission, error) {
	byRole := make(map[uuid.UUID][]domain.Permission, len(ids))
	if len(ids) == 0 {
		return byRole, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT rp.role_id, p.id, p.name, p.codename, p.content_type
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = ANY($1)
		 ORDER BY p.content_type, p.codename`,
		ids,
	)
	if err != nil {
		return nil, translateError("load role permissions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			roleID uuid.UUID
			p      domain.Permission
		)
		if err := rows.Scan(&roleID, &p.ID, &p.Name, &p.Codename, &p.ContentType); err != nil {
			return nil, translateError("scan role permission", err)
		}
		byRole[roleID] = append(byRole[roleID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate role permissions", err)
	}
	return byRole, nil
}

func collectRoles(rows pgx.Rows) ([]domain.Role, error) {
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, translateError("scan role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate roles", err)
	}
	return roles, nil
}

func roleIDs(roles []domain.Role) []uuid.UUID {
	ids := make([]uuid.UUID, len(roles))
	for i, role := range roles {
		ids[i] = role.ID
	}
	return ids
}
