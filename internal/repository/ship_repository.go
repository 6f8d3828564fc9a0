package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const shipColumns = `id, name, registration_number, owner_id, captain_id, length, width,
	gross_tonnage, year_built, home_port, active, created_at, updated_at`

type shipRepository struct {
	db DBTX
}

// NewShipRepository creates a new ship repository
func NewShipRepository(db DBTX) ShipRepository {
	return &shipRepository{db: db}
}

func scanShip(row pgx.Row) (domain.Ship, error) {
	var s domain.Ship
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.RegistrationNumber,
		&s.OwnerID,
		&s.CaptainID,
		&s.Length,
		&s.Width,
		&s.GrossTonnage,
		&s.YearBuilt,
		&s.HomePort,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *shipRepository) Create(ctx context.Context, ship domain.Ship) (domain.Ship, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO ships (id, name, registration_number, owner_id, captain_id, length, width,
		                    gross_tonnage, year_built, home_port, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+shipColumns,
		ship.ID, ship.Name, ship.RegistrationNumber, ship.OwnerID, ship.CaptainID, ship.Length, ship.Width,
		ship.GrossTonnage, ship.YearBuilt, ship.HomePort, ship.Active, ship.CreatedAt, ship.UpdatedAt,
	)
	created, err := scanShip(row)
	if err != nil {
		return domain.Ship{}, translateError("create ship", err)
	}
	return created, nil
}

func (r *shipRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Ship, error) {
	ship, err := scanShip(r.db.QueryRow(ctx, `SELECT `+shipColumns+` FROM ships WHERE id = $1`, id))
	if err != nil {
		return domain.Ship{}, translateError("get ship", err)
	}
	return ship, nil
}

func (r *shipRepository) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (domain.Ship, error) {
	ship, err := scanShip(r.db.QueryRow(ctx,
		`SELECT `+shipColumns+` FROM ships WHERE registration_number = $1`, registrationNumber))
	if err != nil {
		return domain.Ship{}, translateError("get ship by registration number", err)
	}
	return ship, nil
}

func (r *shipRepository) List(ctx context.Context) ([]domain.Ship, error) {
	rows, err := r.db.Query(ctx, `SELECT `+shipColumns+` FROM ships ORDER BY registration_number`)
	if err != nil {
		return nil, translateError("list ships", err)
	}
	defer rows.Close()

	ships := []domain.Ship{}
	for rows.Next() {
		ship, err := scanShip(rows)
		if err != nil {
			return nil, translateError("scan ship", err)
		}
		ships = append(ships, ship)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate ships", err)
	}
	return ships, nil
}

// Update overwrites every editable column; it is a full replace, not a merge.
func (r *shipRepository) Update(ctx context.Context, ship domain.Ship) (domain.Ship, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE ships
		 SET name = $2, registration_number = $3, owner_id = $4, captain_id = $5, length = $6,
		     width = $7, gross_tonnage = $8, year_built = $9, home_port = $10, active = $11,
		     updated_at = $12
		 WHERE id = $1
		 RETURNING `+shipColumns,
		ship.ID, ship.Name, ship.RegistrationNumber, ship.OwnerID, ship.CaptainID, ship.Length,
		ship.Width, ship.GrossTonnage, ship.YearBuilt, ship.HomePort, ship.Active, ship.UpdatedAt,
	)
	updated, err := scanShip(row)
	if err != nil {
		return domain.Ship{}, translateError("update ship", err)
	}
	return updated, nil
}

func (r *shipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ships WHERE id = $1`, id)
	if err != nil {
		return translateError("delete ship", err)
	}
	return checkAffected("delete ship", tag)
}
