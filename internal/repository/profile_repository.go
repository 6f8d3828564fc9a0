package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	ownerColumns = `id, user_id, type_owner, first_name, last_name, id_number, company_name,
		company_registration_number, tax_number, contact_person, phone_number, address,
		created_at, updated_at`
	captainColumns = `id, user_id, first_name, last_name, license_number, years_of_experience,
		phone_number, address, created_at, updated_at`
)

type profileRepository struct {
	db DBTX
}

// NewProfileRepository creates a repository for owner and captain profiles
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func scanOwner(row pgx.Row) (domain.OwnerProfile, error) {
	var o domain.OwnerProfile
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.TypeOwner,
		&o.FirstName,
		&o.LastName,
		&o.IDNumber,
		&o.CompanyName,
		&o.CompanyRegistrationNumber,
		&o.TaxNumber,
		&o.ContactPerson,
		&o.PhoneNumber,
		&o.Address,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanCaptain(row pgx.Row) (domain.CaptainProfile, error) {
	var c domain.CaptainProfile
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.LicenseNumber,
		&c.YearsOfExperience,
		&c.PhoneNumber,
		&c.Address,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *profileRepository) CreateOwner(ctx context.Context, p domain.OwnerProfile) (domain.OwnerProfile, error) {
	created, err := scanOwner(r.db.QueryRow(ctx,
		`INSERT INTO owner_profiles (id, user_id, type_owner, first_name, last_name, id_number,
		     company_name, company_registration_number, tax_number, contact_person,
		     phone_number, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+ownerColumns,
		p.ID, p.UserID, string(p.TypeOwner), p.FirstName, p.LastName, p.IDNumber,
		p.CompanyName, p.CompanyRegistrationNumber, p.TaxNumber, p.ContactPerson,
		p.PhoneNumber, p.Address, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return domain.OwnerProfile{}, translateError("create owner profile", err)
	}
	return created, nil
}

func (r *profileRepository) CreateCaptain(ctx context.Context, p domain.CaptainProfile) (domain.CaptainProfile, error) {
	created, err := scanCaptain(r.db.QueryRow(ctx,
		`INSERT INTO captain_profiles (id, user_id, first_name, last_name, license_number,
		     years_of_experience, phone_number, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+captainColumns,
		p.ID, p.UserID, p.FirstName, p.LastName, p.LicenseNumber,
		p.YearsOfExperience, p.PhoneNumber, p.Address, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return domain.CaptainProfile{}, translateError("create captain profile", err)
	}
	return created, nil
}

func (r *profileRepository) GetOwner(ctx context.Context, id uuid.UUID) (domain.OwnerProfile, error) {
	owner, err := scanOwner(r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owner_profiles WHERE id = $1`, id))
	if err != nil {
		return domain.OwnerProfile{}, translateError("get owner profile", err)
	}
	return owner, nil
}

func (r *profileRepository) GetCaptain(ctx context.Context, id uuid.UUID) (domain.CaptainProfile, error) {
	captain, err := scanCaptain(r.db.QueryRow(ctx, `SELECT `+captainColumns+` FROM captain_profiles WHERE id = $1`, id))
	if err != nil {
		return domain.CaptainProfile{}, translateError("get captain profile", err)
	}
	return captain, nil
}

func (r *profileRepository) GetOwnerByUser(ctx context.Context, userID uuid.UUID) (domain.OwnerProfile, error) {
	owner, err := scanOwner(r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owner_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return domain.OwnerProfile{}, translateError("get owner profile by user", err)
	}
	return owner, nil
}

func (r *profileRepository) GetCaptainByUser(ctx context.Context, userID uuid.UUID) (domain.CaptainProfile, error) {
	captain, err := scanCaptain(r.db.QueryRow(ctx, `SELECT `+captainColumns+` FROM captain_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return domain.CaptainProfile{}, translateError("get captain profile by user", err)
	}
	return captain, nil
}

func (r *profileRepository) ListOwnersByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.OwnerProfile, error) {
	if len(ids) == 0 {
		return []domain.OwnerProfile{}, nil
	}
	return r.queryOwners(ctx, "list owner profiles",
		`SELECT `+ownerColumns+` FROM owner_profiles WHERE id = ANY($1)`, ids)
}

func (r *profileRepository) ListCaptainsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CaptainProfile, error) {
	if len(ids) == 0 {
		return []domain.CaptainProfile{}, nil
	}
	return r.queryCaptains(ctx, "list captain profiles",
		`SELECT `+captainColumns+` FROM captain_profiles WHERE id = ANY($1)`, ids)
}

// FindOwnersByPersonName matches individual owners whose first and last
// names contain the given fragments, case-insensitively.
func (r *profileRepository) FindOwnersByPersonName(ctx context.Context, first, last string) ([]domain.OwnerProfile, error) {
	return r.queryOwners(ctx, "find owners by name",
		`SELECT `+ownerColumns+` FROM owner_profiles
		 WHERE first_name ILIKE $1 ESCAPE '\' AND last_name ILIKE $2 ESCAPE '\'
		 ORDER BY created_at`,
		likePattern(first), likePattern(last))
}

func (r *profileRepository) FindOwnersByCompanyName(ctx context.Context, name string) ([]domain.OwnerProfile, error) {
	return r.queryOwners(ctx, "find owners by company name",
		`SELECT `+ownerColumns+` FROM owner_profiles
		 WHERE company_name ILIKE $1 ESCAPE '\'
		 ORDER BY created_at`,
		likePattern(name))
}

func (r *profileRepository) FindCaptainsByPersonName(ctx context.Context, first, last string) ([]domain.CaptainProfile, error) {
	return r.queryCaptains(ctx, "find captains by name",
		`SELECT `+captainColumns+` FROM captain_profiles
		 WHERE first_name ILIKE $1 ESCAPE '\' AND last_name ILIKE $2 ESCAPE '\'
		 ORDER BY created_at`,
		likePattern(first), likePattern(last))
}

// FindCaptainsByNameToken matches a single token against either name column.
func (r *profileRepository) FindCaptainsByNameToken(ctx context.Context, token string) ([]domain.CaptainProfile, error) {
	return r.queryCaptains(ctx, "find captains by name token",
		`SELECT `+captainColumns+` FROM captain_profiles
		 WHERE first_name ILIKE $1 ESCAPE '\' OR last_name ILIKE $1 ESCAPE '\'
		 ORDER BY created_at`,
		likePattern(token))
}

func (r *profileRepository) queryOwners(ctx context.Context, action, sql string, args ...any) ([]domain.OwnerProfile, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translateError(action, err)
	}
	defer rows.Close()

	owners := []domain.OwnerProfile{}
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, translateError(action, err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(action, err)
	}
	return owners, nil
}

func (r *profileRepository) queryCaptains(ctx context.Context, action, sql string, args ...any) ([]domain.CaptainProfile, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translateError(action, err)
	}
	defer rows.Close()

	captains := []domain.CaptainProfile{}
	for rows.Next() {
		captain, err := scanCaptain(rows)
		if err != nil {
			return nil, translateError(action, err)
		}
		captains = append(captains, captain)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(action, err)
	}
	return captains, nil
}
