package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ship is a registered fishing vessel keyed by its registration number.
type Ship struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	CaptainID          *uuid.UUID `json:"captain_id"`
	Length             *float64   `json:"length"`
	Width              *float64   `json:"width"`
	GrossTonnage       *float64   `json:"gross_tonnage"`
	YearBuilt          *int       `json:"year_built"`
	HomePort           *string    `json:"home_port"`
	Active             bool       `json:"active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ShipFields holds every editable ship attribute. Create and full-replace
// updates both take the complete set.
type ShipFields struct {
	Name               string
	RegistrationNumber string
	OwnerID            uuid.UUID
	CaptainID          *uuid.UUID
	Length             *float64
	Width              *float64
	GrossTonnage       *float64
	YearBuilt          *int
	HomePort           *string
	Active             bool
}

// NewShip creates a new ship with immutable pattern
func NewShip(fields ShipFields) Ship {
	now := time.Now()
	return Ship{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}.apply(fields)
}

// WithFields replaces all editable attributes of the ship.
func (s Ship) WithFields(fields ShipFields) Ship {
	updated := s.apply(fields)
	updated.UpdatedAt = time.Now()
	return updated
}

func (s Ship) apply(f ShipFields) Ship {
	s.Name = f.Name
	s.RegistrationNumber = f.RegistrationNumber
	s.OwnerID = f.OwnerID
	s.CaptainID = f.CaptainID
	s.Length = f.Length
	s.Width = f.Width
	s.GrossTonnage = f.GrossTonnage
	s.YearBuilt = f.YearBuilt
	s.HomePort = f.HomePort
	s.Active = f.Active
	return s
}

// Fields extracts the editable attributes of the ship.
func (s Ship) Fields() ShipFields {
	return ShipFields{
		Name:               s.Name,
		RegistrationNumber: s.RegistrationNumber,
		OwnerID:            s.OwnerID,
		CaptainID:          s.CaptainID,
		Length:             s.Length,
		Width:              s.Width,
		GrossTonnage:       s.GrossTonnage,
		YearBuilt:          s.YearBuilt,
		HomePort:           s.HomePort,
		Active:             s.Active,
	}
}
