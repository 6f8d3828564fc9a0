package domain

import (
	"time"

	"github.com/google/uuid"
)

// FishingArea is a fishing region keyed by its unique region code.
type FishingArea struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFishingArea creates a new fishing area with immutable pattern
func NewFishingArea(name, code string, description *string) FishingArea {
	now := time.Now()
	return FishingArea{
		ID:          uuid.New(),
		Name:        name,
		Code:        code,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithFields returns a copy carrying the given editable fields. Identity and
// creation time are preserved.
func (a FishingArea) WithFields(name, code string, description *string) FishingArea {
	return FishingArea{
		ID:          a.ID,
		Name:        name,
		Code:        code,
		Description: description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   time.Now(),
	}
}
