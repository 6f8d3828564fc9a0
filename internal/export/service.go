package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/ingestion"
	"github.com/rpattn/fleetreg/internal/repository"

	"github.com/google/uuid"
)

// ErrUnknownResource is returned for resources that cannot be exported.
var ErrUnknownResource = errors.New("unknown export resource")

// Service builds import templates and full-table exports. Export columns
// match the import columns so an export can be edited and re-imported.
type Service struct {
	areas    repository.FishingAreaRepository
	ships    repository.ShipRepository
	roles    repository.RoleRepository
	profiles repository.ProfileRepository
}

// NewService creates a new export service.
func NewService(
	areas repository.FishingAreaRepository,
	ships repository.ShipRepository,
	roles repository.RoleRepository,
	profiles repository.ProfileRepository,
) *Service {
	return &Service{areas: areas, ships: ships, roles: roles, profiles: profiles}
}

type template struct {
	sheet    string
	fileName string
	sample   []any
}

var templates = map[string]template{
	ingestion.ResourceFishingAreas: {
		sheet:    "Fishing_Areas_Template",
		fileName: "fishing_areas_import_template",
		sample:   []any{"Example Fishing Area", "EX001", "Example description for fishing area"},
	},
	ingestion.ResourceShips: {
		sheet:    "Ships_Template",
		fileName: "ships_import_template",
		sample:   []any{"Example Ship Name", "EX123456", "John Doe", "Captain Smith", 20.5, 5.2, 100.5, 2020, "Port City", true},
	},
	ingestion.ResourceRoles: {
		sheet:    "Roles_Template",
		fileName: "roles_import_template",
		sample:   []any{"Example Role", "Example role description", true},
	},
}

// headers returns the import column names of resource.
func headers(resource string) ([]string, error) {
	switch resource {
	case ingestion.ResourceFishingAreas:
		return ingestion.FishingAreaSchema.Names(), nil
	case ingestion.ResourceShips:
		return ingestion.ShipSchema.Names(), nil
	case ingestion.ResourceRoles:
		return ingestion.RoleSchema.Names(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}

// Template returns the import template of resource with one sample row,
// and the suggested file name without extension.
func (s *Service) Template(resource string) (Sheet, string, error) {
	cols, err := headers(resource)
	if err != nil {
		return Sheet{}, "", err
	}
	tpl := templates[resource]
	return Sheet{Name: tpl.sheet, Headers: cols, Rows: [][]any{tpl.sample}}, tpl.fileName, nil
}

// Export returns every stored row of resource.
func (s *Service) Export(ctx context.Context, resource string) (Sheet, error) {
	cols, err := headers(resource)
	if err != nil {
		return Sheet{}, err
	}

	var rows [][]any
	switch resource {
	case ingestion.ResourceFishingAreas:
		rows, err = s.fishingAreaRows(ctx)
	case ingestion.ResourceShips:
		rows, err = s.shipRows(ctx)
	case ingestion.ResourceRoles:
		rows, err = s.roleRows(ctx)
	}
	if err != nil {
		return Sheet{}, err
	}
	return Sheet{Name: resource, Headers: cols, Rows: rows}, nil
}

func (s *Service) fishingAreaRows(ctx context.Context) ([][]any, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fishing areas: %w", err)
	}
	rows := make([][]any, len(areas))
	for i, a := range areas {
		rows[i] = []any{a.Name, a.Code, a.Description}
	}
	return rows, nil
}

func (s *Service) roleRows(ctx context.Context) ([][]any, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	rows := make([][]any, len(roles))
	for i, r := range roles {
		rows[i] = []any{r.Name, r.Description, r.IsActive}
	}
	return rows, nil
}

func (s *Service) shipRows(ctx context.Context) ([][]any, error) {
	ships, err := s.ships.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ships: %w", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(ships))
	captainIDs := make([]uuid.UUID, 0, len(ships))
	for _, ship := range ships {
		ownerIDs = append(ownerIDs, ship.OwnerID)
		if ship.CaptainID != nil {
			captainIDs = append(captainIDs, *ship.CaptainID)
		}
	}

	owners, err := s.profiles.ListOwnersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	captains, err := s.profiles.ListCaptainsByIDs(ctx, captainIDs)
	if err != nil {
		return nil, fmt.Errorf("load captains: %w", err)
	}
	ownerNames := make(map[uuid.UUID]string, len(owners))
	for _, o := range owners {
		ownerNames[o.ID] = o.DisplayName()
	}
	captainNames := make(map[uuid.UUID]string, len(captains))
	for _, c := range captains {
		captainNames[c.ID] = c.DisplayName()
	}

	rows := make([][]any, len(ships))
	for i, ship := range ships {
		rows[i] = shipRow(ship, ownerNames, captainNames)
	}
	return rows, nil
}

func shipRow(ship domain.Ship, ownerNames, captainNames map[uuid.UUID]string) []any {
	captain := ""
	if ship.CaptainID != nil {
		captain = captainNames[*ship.CaptainID]
	}
	return []any{
		ship.Name,
		ship.RegistrationNumber,
		ownerNames[ship.OwnerID],
		captain,
		ship.Length,
		ship.Width,
		ship.GrossTonnage,
		ship.YearBuilt,
		ship.HomePort,
		ship.Active,
	}
}
