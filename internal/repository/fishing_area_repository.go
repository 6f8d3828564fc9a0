package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const fishingAreaColumns = `id, name, code, description, created_at, updated_at`

// fishingAreaRepository implements FishingAreaRepository interface
type fishingAreaRepository struct {
	db DBTX
}

// NewFishingAreaRepository creates a new fishing area repository
func NewFishingAreaRepository(db DBTX) FishingAreaRepository {
	return &fishingAreaRepository{db: db}
}

func scanFishingArea(row pgx.Row) (domain.FishingArea, error) {
	var area domain.FishingArea
	err := row.Scan(&area.ID, &area.Name, &area.Code, &area.Description, &area.CreatedAt, &area.UpdatedAt)
	return area, err
}

// Create creates a new fishing area
func (r *fishingAreaRepository) Create(ctx context.Context, area domain.FishingArea) (domain.FishingArea, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO fishing_areas (id, name, code, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+fishingAreaColumns,
		area.ID, area.Name, area.Code, area.Description, area.CreatedAt, area.UpdatedAt,
	)
	created, err := scanFishingArea(row)
	if err != nil {
		return domain.FishingArea{}, translateError("create fishing area", err)
	}
	return created, nil
}

// GetByID retrieves a fishing area by ID
func (r *fishingAreaRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.FishingArea, error) {
	area, err := scanFishingArea(r.db.QueryRow(ctx,
		`SELECT `+fishingAreaColumns+` FROM fishing_areas WHERE id = $1`, id))
	if err != nil {
		return domain.FishingArea{}, translateError("get fishing area", err)
	}
	return area, nil
}

// GetByCode retrieves a fishing area by its region code
func (r *fishingAreaRepository) GetByCode(ctx context.Context, code string) (domain.FishingArea, error) {
	area, err := scanFishingArea(r.db.QueryRow(ctx,
		`SELECT `+fishingAreaColumns+` FROM fishing_areas WHERE code = $1`, code))
	if err != nil {
		return domain.FishingArea{}, translateError("get fishing area by code", err)
	}
	return area, nil
}

// List retrieves all fishing areas
func (r *fishingAreaRepository) List(ctx context.Context) ([]domain.FishingArea, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fishingAreaColumns+` FROM fishing_areas ORDER BY code`)
	if err != nil {
		return nil, translateError("list fishing areas", err)
	}
	defer rows.Close()

	areas := []domain.FishingArea{}
	for rows.Next() {
		area, err := scanFishingArea(rows)
		if err != nil {
			return nil, translateError("scan fishing area", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate fishing areas", err)
	}
	return areas, nil
}

// Update replaces every editable column of a fishing area
func (r *fishingAreaRepository) Update(ctx context.Context, area domain.FishingArea) (domain.FishingArea, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE fishing_areas
		 SET name = $2, code = $3, description = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+fishingAreaColumns,
		area.ID, area.Name, area.Code, area.Description, area.UpdatedAt,
	)
	updated, err := scanFishingArea(row)
	if err != nil {
		return domain.FishingArea{}, translateError("update fishing area", err)
	}
	return updated, nil
}

// Delete deletes a fishing area
func (r *fishingAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fishing_areas WHERE id = $1`, id)
	if err != nil {
		return translateError("delete fishing area", err)
	}
	return checkAffected("delete fishing area", tag)
}
