package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"
)

type permissionRepository struct {
	db DBTX
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db DBTX) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, codename, content_type FROM permissions ORDER BY content_type, codename`)
	if err != nil {
		return nil, translateError("list permissions", err)
	}
	defer rows.Close()

	permissions := []domain.Permission{}
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Codename, &p.ContentType); err != nil {
			return nil, translateError("scan permission", err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate permissions", err)
	}
	return permissions, nil
}
