package ingestion

import (
	"context"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/pkg/validator"
)

// Importable resources.
const (
	ResourceFishingAreas = "fishing-areas"
	ResourceShips        = "ships"
	ResourceRoles        = "roles"
)

// FishingAreaSchema lists the columns of a fishing area sheet.
var FishingAreaSchema = validator.Schema{
	{Name: "name", Type: validator.FieldTypeString, Required: true, MaxLength: 200},
	{Name: "code", Type: validator.FieldTypeString, Required: true, MaxLength: 20},
	{Name: "description", Type: validator.FieldTypeText},
}

// ShipSchema lists the columns of a ship sheet. Owner and captain are given
// by display name.
var ShipSchema = validator.Schema{
	{Name: "name", Type: validator.FieldTypeString, Required: true, MaxLength: 200},
	{Name: "registration_number", Type: validator.FieldTypeString, Required: true, MaxLength: 100},
	{Name: "owner_name", Type: validator.FieldTypeString, Required: true},
	{Name: "captain_name", Type: validator.FieldTypeString},
	{Name: "length", Type: validator.FieldTypeDecimal},
	{Name: "width", Type: validator.FieldTypeDecimal},
	{Name: "gross_tonnage", Type: validator.FieldTypeDecimal},
	{Name: "year_built", Type: validator.FieldTypeInteger},
	{Name: "home_port", Type: validator.FieldTypeString, MaxLength: 100},
	{Name: "active", Type: validator.FieldTypeBoolean, Default: true},
}

// RoleSchema lists the columns of a role sheet.
var RoleSchema = validator.Schema{
	{Name: "name", Type: validator.FieldTypeString, Required: true, MaxLength: 100},
	{Name: "description", Type: validator.FieldTypeText},
	{Name: "is_active", Type: validator.FieldTypeBoolean, Default: true},
}

// Importer reconciles validated rows of one resource.
type Importer interface {
	Resource() string
	Schema() validator.Schema
	ImportRecord(ctx context.Context, row int, record validator.Record) RowOutcome
}

// FishingAreaRecord is a validated fishing area row.
type FishingAreaRecord struct {
	Name        string
	Code        string
	Description *string
}

func (r FishingAreaRecord) NaturalKey() string { return r.Code }

// ShipRecord is a validated ship row with owner and captain resolved.
type ShipRecord struct {
	Fields domain.ShipFields
}

func (r ShipRecord) NaturalKey() string { return r.Fields.RegistrationNumber }

// RoleRecord is a validated role row.
type RoleRecord struct {
	Name        string
	Description string
	IsActive    bool
}

func (r RoleRecord) NaturalKey() string { return r.Name }

type projectFunc[R Keyed] func(ctx context.Context, row int, record validator.Record) (R, error)

// resourceImporter chains projection, reference resolution and reconciliation.
type resourceImporter[R Keyed] struct {
	resource   string
	schema     validator.Schema
	project    projectFunc[R]
	reconciler *Reconciler[R]
}

func (i *resourceImporter[R]) Resource() string         { return i.resource }
func (i *resourceImporter[R]) Schema() validator.Schema { return i.schema }

func (i *resourceImporter[R]) ImportRecord(ctx context.Context, row int, record validator.Record) RowOutcome {
	typed, err := i.project(ctx, row, record)
	if err != nil {
		return Errored(row, err)
	}
	return i.reconciler.Reconcile(ctx, row, typed)
}

// NewFishingAreaImporter imports fishing areas keyed by code.
func NewFishingAreaImporter(store Store[FishingAreaRecord]) Importer {
	return &resourceImporter[FishingAreaRecord]{
		resource: ResourceFishingAreas,
		schema:   FishingAreaSchema,
		project: func(_ context.Context, _ int, rec validator.Record) (FishingAreaRecord, error) {
			return FishingAreaRecord{
				Name:        rec.String("name"),
				Code:        rec.String("code"),
				Description: rec.StringPtr("description"),
			}, nil
		},
		reconciler: NewReconciler[FishingAreaRecord]("code", store),
	}
}

// NewShipImporter imports ships keyed by registration number, resolving
// owner and captain names through resolver.
func NewShipImporter(store Store[ShipRecord], resolver *Resolver) Importer {
	return &resourceImporter[ShipRecord]{
		resource: ResourceShips,
		schema:   ShipSchema,
		project: func(ctx context.Context, row int, rec validator.Record) (ShipRecord, error) {
			ownerID, err := resolver.ResolveOwner(ctx, row, "owner_name", rec.String("owner_name"))
			if err != nil {
				return ShipRecord{}, err
			}
			captainID, err := resolver.ResolveCaptain(ctx, row, "captain_name", rec.String("captain_name"))
			if err != nil {
				return ShipRecord{}, err
			}
			return ShipRecord{Fields: domain.ShipFields{
				Name:               rec.String("name"),
				RegistrationNumber: rec.String("registration_number"),
				OwnerID:            ownerID,
				CaptainID:          captainID,
				Length:             rec.FloatPtr("length"),
				Width:              rec.FloatPtr("width"),
				GrossTonnage:       rec.FloatPtr("gross_tonnage"),
				YearBuilt:          rec.IntPtr("year_built"),
				HomePort:           rec.StringPtr("home_port"),
				Active:             rec.Bool("active", true),
			}}, nil
		},
		reconciler: NewReconciler[ShipRecord]("registration_number", store),
	}
}

// NewRoleImporter imports roles keyed by name.
func NewRoleImporter(store Store[RoleRecord]) Importer {
	return &resourceImporter[RoleRecord]{
		resource: ResourceRoles,
		schema:   RoleSchema,
		project: func(_ context.Context, _ int, rec validator.Record) (RoleRecord, error) {
			return RoleRecord{
				Name:        rec.String("name"),
				Description: rec.String("description"),
				IsActive:    rec.Bool("is_active", true),
			}, nil
		},
		reconciler: NewReconciler[RoleRecord]("name", store),
	}
}
