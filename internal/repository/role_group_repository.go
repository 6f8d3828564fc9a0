package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roleGroupColumns = `id, name, description, is_active, created_at, updated_at`

type roleGroupRepository struct {
	db DBTX
}

// NewRoleGroupRepository creates a new role group repository
func NewRoleGroupRepository(db DBTX) RoleGroupRepository {
	return &roleGroupRepository{db: db}
}

func scanRoleGroup(row pgx.Row) (domain.RoleGroup, error) {
	var g domain.RoleGroup
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	g.Roles = []domain.Role{}
	return g, err
}

func (r *roleGroupRepository) Create(ctx context.Context, group domain.RoleGroup) (domain.RoleGroup, error) {
	created, err := scanRoleGroup(r.db.QueryRow(ctx,
		`INSERT INTO role_groups (id, name, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+roleGroupColumns,
		group.ID, group.Name, group.Description, group.IsActive, group.CreatedAt, group.UpdatedAt,
	))
	if err != nil {
		return domain.RoleGroup{}, translateError("create role group", err)
	}
	return created, nil
}

func (r *roleGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.RoleGroup, error) {
	group, err := scanRoleGroup(r.db.QueryRow(ctx, `SELECT `+roleGroupColumns+` FROM role_groups WHERE id = $1`, id))
	if err != nil {
		return domain.RoleGroup{}, translateError("get role group", err)
	}
	return r.withRoles(ctx, group)
}

func (r *roleGroupRepository) List(ctx context.Context) ([]domain.RoleGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleGroupColumns+` FROM role_groups ORDER BY name`)
	if err != nil {
		return nil, translateError("list role groups", err)
	}
	defer rows.Close()

	groups := []domain.RoleGroup{}
	for rows.Next() {
		group, err := scanRoleGroup(rows)
		if err != nil {
			return nil, translateError("scan role group", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate role groups", err)
	}
	rows.Close()

	for i := range groups {
		if groups[i], err = r.withRoles(ctx, groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *roleGroupRepository) Update(ctx context.Context, group domain.RoleGroup) (domain.RoleGroup, error) {
	updated, err := scanRoleGroup(r.db.QueryRow(ctx,
		`UPDATE role_groups SET name = $2, description = $3, is_active = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+roleGroupColumns,
		group.ID, group.Name, group.Description, group.IsActive, group.UpdatedAt,
	))
	if err != nil {
		return domain.RoleGroup{}, translateError("update role group", err)
	}
	return r.withRoles(ctx, updated)
}

func (r *roleGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM role_groups WHERE id = $1`, id)
	if err != nil {
		return translateError("delete role group", err)
	}
	return checkAffected("delete role group", tag)
}

// SetRoles replaces the group's role membership atomically. Unknown role
// ids are skipped.
func (r *roleGroupRepository) SetRoles(ctx context.Context, groupID uuid.UUID, roleIDs []uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_group_roles WHERE group_id = $1`, groupID); err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO role_group_roles (group_id, role_id)
			 SELECT $1, r.id FROM roles r WHERE r.id = ANY($2::uuid[])
			 ON CONFLICT DO NOTHING`,
			groupID, roleIDs,
		)
		return err
	})
	if err != nil {
		return translateError("set role group roles", err)
	}
	return nil
}

func (r *roleGroupRepository) withRoles(ctx context.Context, group domain.RoleGroup) (domain.RoleGroup, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.name, r.description, r.is_active, r.created_at, r.updated_at
		 FROM role_group_roles gr
		 JOIN roles r ON r.id = gr.role_id
		 WHERE gr.group_id = $1
		 ORDER BY r.name`,
		group.ID,
	)
	if err != nil {
		return domain.RoleGroup{}, translateError("load role group roles", err)
	}
	roles, err := collectRoles(rows)
	if err != nil {
		return domain.RoleGroup{}, err
	}
	group.Roles = roles
	return group, nil
}
