package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
)

func TestServiceImportScenarioIsIdempotent(t *testing.T) {
	areaRepo := newStubAreaRepo()
	service := NewService(&stubLogRepo{}, nil, NewFishingAreaImporter(NewFishingAreaStore(areaRepo)))

	data := "name,code,description\n\"North Reef\",\"NR01\",\"demo\"\n"
	req := func() Request {
		return Request{Resource: ResourceFishingAreas, FileName: "regions.csv", Data: strings.NewReader(data)}
	}

	first, err := service.Import(context.Background(), req())
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if first.Created != 1 || first.Updated != 0 || len(first.Errors) != 0 {
		t.Fatalf("unexpected first report: %+v", first)
	}

	second, err := service.Import(context.Background(), req())
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if second.Created != 0 || second.Updated != 1 || len(second.Errors) != 0 {
		t.Fatalf("unexpected second report: %+v", second)
	}
	if len(areaRepo.byID) != 1 {
		t.Fatalf("expected a single fishing area, got %d", len(areaRepo.byID))
	}
}

func TestServiceImportMissingCodeContinues(t *testing.T) {
	areaRepo := newStubAreaRepo()
	logRepo := &stubLogRepo{}
	service := NewService(logRepo, nil, NewFishingAreaImporter(NewFishingAreaStore(areaRepo)))

	data := "name,code,description\nNo Code,,x\nSouth Bank,SB02,\n"
	report, err := service.Import(context.Background(), Request{
		Resource: ResourceFishingAreas,
		FileName: "regions.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if len(report.Outcomes) != 2 {
		t.Fatalf("expected one outcome per row, got %d", len(report.Outcomes))
	}
	if report.Outcomes[0].Kind != OutcomeErrored || !strings.Contains(report.Outcomes[0].Message, "code") {
		t.Fatalf("expected row 1 errored on code, got %+v", report.Outcomes[0])
	}
	if report.Outcomes[1].Kind != OutcomeCreated {
		t.Fatalf("expected row 2 created, got %+v", report.Outcomes[1])
	}
	if len(report.Errors) != 1 || !strings.HasPrefix(report.Errors[0], "Row 1: ") {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if len(logRepo.entries) != 1 || logRepo.entries[0].RowNumber == nil || *logRepo.entries[0].RowNumber != 1 {
		t.Fatalf("expected the row error to be logged, got %+v", logRepo.entries)
	}
}

func TestServiceImportPersistenceErrorIsRowScoped(t *testing.T) {
	areaRepo := newStubAreaRepo()
	areaRepo.failCode = "BAD"
	service := NewService(nil, nil, NewFishingAreaImporter(NewFishingAreaStore(areaRepo)))

	data := "name,code\nFirst,A1\nBroken,BAD\nThird,C3\n"
	report, err := service.Import(context.Background(), Request{
		Resource: ResourceFishingAreas,
		FileName: "regions.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	kinds := []OutcomeKind{report.Outcomes[0].Kind, report.Outcomes[1].Kind, report.Outcomes[2].Kind}
	want := []OutcomeKind{OutcomeCreated, OutcomeErrored, OutcomeCreated}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("row %d: expected %s, got %s", i+1, want[i], kinds[i])
		}
	}
	if _, err := areaRepo.GetByCode(context.Background(), "A1"); err != nil {
		t.Fatalf("earlier row should stay written: %v", err)
	}
}

func TestServiceImportBlankRowIsSkipped(t *testing.T) {
	service := NewService(nil, nil, NewFishingAreaImporter(NewFishingAreaStore(newStubAreaRepo())))

	data := "name,code\nA,A1\n,\nB,B2\n"
	report, err := service.Import(context.Background(), Request{
		Resource: ResourceFishingAreas,
		FileName: "regions.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if report.Skipped != 1 || report.Created != 2 || report.TotalRows != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Outcomes[1].Row != 2 || report.Outcomes[1].Kind != OutcomeSkipped {
		t.Fatalf("expected row 2 skipped, got %+v", report.Outcomes[1])
	}
}

func TestServiceImportShips(t *testing.T) {
	owner := party{id: uuid.New(), first: "John", last: "Doe"}
	captain := party{id: uuid.New(), first: "Budi", last: "Smith"}
	lookup := &stubLookup{
		owners: []party{
			owner,
			{id: uuid.New(), first: "John", last: "Lee"},
			{id: uuid.New(), first: "Joanna", last: "Leeson"},
		},
		captains: []party{captain},
	}
	shipRepo := newStubShipRepo()
	service := NewService(nil, nil, NewShipImporter(NewShipStore(shipRepo), NewResolver(lookup)))

	data := strings.Join([]string{
		"name,registration_number,owner_name,captain_name,length,width,gross_tonnage,year_built,home_port,active",
		"Bahari,KM-001,John Doe,Smith,20.5,5.2,100.5,2020,Ambon,",
		"Ambiguous,KM-002,Jo Lee,,,,,,,",
		"Bad Length,KM-003,John Doe,,long,,,,,",
		"Retired,KM-004,John Doe,,,,,,,no",
	}, "\n")

	report, err := service.Import(context.Background(), Request{
		Resource: ResourceShips,
		FileName: "ships.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if report.Created != 2 || report.Errored != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	bahari, err := shipRepo.GetByRegistrationNumber(context.Background(), "KM-001")
	if err != nil {
		t.Fatalf("expected KM-001 stored: %v", err)
	}
	if bahari.OwnerID != owner.id || bahari.CaptainID == nil || *bahari.CaptainID != captain.id {
		t.Fatalf("references not resolved: %+v", bahari)
	}
	if !bahari.Active || bahari.Length == nil || *bahari.Length != 20.5 || bahari.YearBuilt == nil || *bahari.YearBuilt != 2020 {
		t.Fatalf("fields not projected: %+v", bahari)
	}

	retired, err := shipRepo.GetByRegistrationNumber(context.Background(), "KM-004")
	if err != nil {
		t.Fatalf("expected KM-004 stored: %v", err)
	}
	if retired.Active {
		t.Fatalf("expected explicit active=no to be honoured")
	}

	if !strings.Contains(report.Errors[0], "Row 2:") || !strings.Contains(report.Errors[0], "Jo Lee") {
		t.Fatalf("expected ambiguous owner on row 2, got %v", report.Errors)
	}
	if !strings.Contains(report.Errors[1], "Row 3:") || !strings.Contains(report.Errors[1], "length") {
		t.Fatalf("expected length coercion failure on row 3, got %v", report.Errors)
	}
}

func TestServiceImportRoles(t *testing.T) {
	roleRepo := newStubRoleRepo()
	service := NewService(nil, nil, NewRoleImporter(NewRoleStore(roleRepo)))

	data := "name,description,is_active\nAuditor,reads reports,\nAuditor,reads everything,false\n"
	report, err := service.Import(context.Background(), Request{
		Resource: ResourceRoles,
		FileName: "roles.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if report.Created != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	role, _ := roleRepo.GetByName(context.Background(), "Auditor")
	if role.Description != "reads everything" || role.IsActive {
		t.Fatalf("expected second row to replace the first, got %+v", role)
	}
}

func TestServiceImportFormatErrors(t *testing.T) {
	logRepo := &stubLogRepo{}
	service := NewService(logRepo, nil, NewFishingAreaImporter(NewFishingAreaStore(newStubAreaRepo())))

	cases := []Request{
		{Resource: ResourceFishingAreas, FileName: "regions.txt", Data: strings.NewReader("name,code\nA,B\n")},
		{Resource: ResourceFishingAreas, FileName: "regions.xlsx", Data: strings.NewReader("garbage")},
		{Resource: ResourceFishingAreas, FileName: "regions.csv", Data: strings.NewReader("")},
	}
	for _, req := range cases {
		_, err := service.Import(context.Background(), req)
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("%s: expected FormatError, got %v", req.FileName, err)
		}
		if formatErr.FileName != req.FileName {
			t.Fatalf("%s: expected file name on error, got %q", req.FileName, formatErr.FileName)
		}
	}
	if len(logRepo.entries) != len(cases) {
		t.Fatalf("expected file-level errors to be logged, got %d", len(logRepo.entries))
	}
}

func TestServiceImportUnknownResource(t *testing.T) {
	service := NewService(nil, nil)
	_, err := service.Import(context.Background(), Request{Resource: "harbours", FileName: "x.csv", Data: strings.NewReader("a\n1\n")})
	if !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

type stubLogRepo struct {
	entries []domain.ImportLogEntry
}

func (s *stubLogRepo) Record(_ context.Context, entry domain.ImportLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLogRepo) List(context.Context, string, string, int, int) ([]domain.ImportLogEntry, error) {
	return s.entries, nil
}

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, domain.ErrNotFound)
}

type stubAreaRepo struct {
	byID     map[uuid.UUID]domain.FishingArea
	failCode string
}

func newStubAreaRepo() *stubAreaRepo {
	return &stubAreaRepo{byID: map[uuid.UUID]domain.FishingArea{}}
}

func (s *stubAreaRepo) Create(_ context.Context, area domain.FishingArea) (domain.FishingArea, error) {
	if area.Code == s.failCode {
		return domain.FishingArea{}, errors.New("value too long for type character varying(20)")
	}
	s.byID[area.ID] = area
	return area, nil
}

func (s *stubAreaRepo) GetByID(_ context.Context, id uuid.UUID) (domain.FishingArea, error) {
	area, ok := s.byID[id]
	if !ok {
		return domain.FishingArea{}, notFound("fishing area")
	}
	return area, nil
}

func (s *stubAreaRepo) GetByCode(_ context.Context, code string) (domain.FishingArea, error) {
	for _, area := range s.byID {
		if area.Code == code {
			return area, nil
		}
	}
	return domain.FishingArea{}, notFound("fishing area")
}

func (s *stubAreaRepo) List(context.Context) ([]domain.FishingArea, error) {
	areas := make([]domain.FishingArea, 0, len(s.byID))
	for _, area := range s.byID {
		areas = append(areas, area)
	}
	return areas, nil
}

func (s *stubAreaRepo) Update(_ context.Context, area domain.FishingArea) (domain.FishingArea, error) {
	if _, ok := s.byID[area.ID]; !ok {
		return domain.FishingArea{}, notFound("fishing area")
	}
	s.byID[area.ID] = area
	return area, nil
}

func (s *stubAreaRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubShipRepo struct {
	byID map[uuid.UUID]domain.Ship
}

func newStubShipRepo() *stubShipRepo {
	return &stubShipRepo{byID: map[uuid.UUID]domain.Ship{}}
}

func (s *stubShipRepo) Create(_ context.Context, ship domain.Ship) (domain.Ship, error) {
	s.byID[ship.ID] = ship
	return ship, nil
}

func (s *stubShipRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Ship, error) {
	ship, ok := s.byID[id]
	if !ok {
		return domain.Ship{}, notFound("ship")
	}
	return ship, nil
}

func (s *stubShipRepo) GetByRegistrationNumber(_ context.Context, registrationNumber string) (domain.Ship, error) {
	for _, ship := range s.byID {
		if ship.RegistrationNumber == registrationNumber {
			return ship, nil
		}
	}
	return domain.Ship{}, notFound("ship")
}

func (s *stubShipRepo) List(context.Context) ([]domain.Ship, error) {
	ships := make([]domain.Ship, 0, len(s.byID))
	for _, ship := range s.byID {
		ships = append(ships, ship)
	}
	return ships, nil
}

func (s *stubShipRepo) Update(_ context.Context, ship domain.Ship) (domain.Ship, error) {
	s.byID[ship.ID] = ship
	return ship, nil
}

func (s *stubShipRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubRoleRepo struct {
	byID map[uuid.UUID]domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{byID: map[uuid.UUID]domain.Role{}}
}

func (s *stubRoleRepo) Create(_ context.Context, role domain.Role) (domain.Role, error) {
	s.byID[role.ID] = role
	return role, nil
}

func (s *stubRoleRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Role, error) {
	role, ok := s.byID[id]
	if !ok {
		return domain.Role{}, notFound("role")
	}
	return role, nil
}

func (s *stubRoleRepo) GetByName(_ context.Context, name string) (domain.Role, error) {
	for _, role := range s.byID {
		if role.Name == name {
			return role, nil
		}
	}
	return domain.Role{}, notFound("role")
}

func (s *stubRoleRepo) List(context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(s.byID))
	for _, role := range s.byID {
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *stubRoleRepo) Update(_ context.Context, role domain.Role) (domain.Role, error) {
	s.byID[role.ID] = role
	return role, nil
}

func (s *stubRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func (s *stubRoleRepo) SetPermissions(context.Context, uuid.UUID, []uuid.UUID) error {
	return nil
}
