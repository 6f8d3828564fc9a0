package ingestion

import (
	"context"
	"errors"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/repository"

	"github.com/google/uuid"
)

type fishingAreaStore struct {
	repo repository.FishingAreaRepository
}

// NewFishingAreaStore adapts the fishing area repository for reconciliation.
func NewFishingAreaStore(repo repository.FishingAreaRepository) Store[FishingAreaRecord] {
	return &fishingAreaStore{repo: repo}
}

func (s *fishingAreaStore) FindIDByKey(ctx context.Context, code string) (uuid.UUID, bool, error) {
	area, err := s.repo.GetByCode(ctx, code)
	return foundID(area.ID, err)
}

func (s *fishingAreaStore) Create(ctx context.Context, rec FishingAreaRecord) (uuid.UUID, error) {
	created, err := s.repo.Create(ctx, domain.NewFishingArea(rec.Name, rec.Code, rec.Description))
	return created.ID, err
}

func (s *fishingAreaStore) Replace(ctx context.Context, id uuid.UUID, rec FishingAreaRecord) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(ctx, existing.WithFields(rec.Name, rec.Code, rec.Description))
	return err
}

type shipStore struct {
	repo repository.ShipRepository
}

// NewShipStore adapts the ship repository for reconciliation.
func NewShipStore(repo repository.ShipRepository) Store[ShipRecord] {
	return &shipStore{repo: repo}
}

func (s *shipStore) FindIDByKey(ctx context.Context, registrationNumber string) (uuid.UUID, bool, error) {
	ship, err := s.repo.GetByRegistrationNumber(ctx, registrationNumber)
	return foundID(ship.ID, err)
}

func (s *shipStore) Create(ctx context.Context, rec ShipRecord) (uuid.UUID, error) {
	created, err := s.repo.Create(ctx, domain.NewShip(rec.Fields))
	return created.ID, err
}

func (s *shipStore) Replace(ctx context.Context, id uuid.UUID, rec ShipRecord) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(ctx, existing.WithFields(rec.Fields))
	return err
}

type roleStore struct {
	repo repository.RoleRepository
}

// NewRoleStore adapts the role repository for reconciliation. Permissions of
// existing roles are left untouched.
func NewRoleStore(repo repository.RoleRepository) Store[RoleRecord] {
	return &roleStore{repo: repo}
}

func (s *roleStore) FindIDByKey(ctx context.Context, name string) (uuid.UUID, bool, error) {
	role, err := s.repo.GetByName(ctx, name)
	return foundID(role.ID, err)
}

func (s *roleStore) Create(ctx context.Context, rec RoleRecord) (uuid.UUID, error) {
	created, err := s.repo.Create(ctx, domain.NewRole(rec.Name, rec.Description, rec.IsActive))
	return created.ID, err
}

func (s *roleStore) Replace(ctx context.Context, id uuid.UUID, rec RoleRecord) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(ctx, existing.WithFields(rec.Name, rec.Description, rec.IsActive))
	return err
}

func foundID(id uuid.UUID, err error) (uuid.UUID, bool, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}
