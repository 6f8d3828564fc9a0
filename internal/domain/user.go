package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known role names assigned by the owner and captain registration flows.
const (
	RoleShipOwner   = "Pemilik Kapal"
	RoleShipCaptain = "Nahkoda Kapal"
)

// User is an account in the back office.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	RoleID       *uuid.UUID `json:"role_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewUser creates a new user with immutable pattern
func NewUser(username, email, passwordHash string, roleID *uuid.UUID) User {
	return User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	}
}

// OwnerType distinguishes individual from company ship owners.
type OwnerType string

const (
	OwnerTypeIndividual OwnerType = "individual"
	OwnerTypeCompany    OwnerType = "company"
)

// Valid reports whether t is a known owner type.
func (t OwnerType) Valid() bool {
	return t == OwnerTypeIndividual || t == OwnerTypeCompany
}

// OwnerProfile holds either individual or company owner details.
type OwnerProfile struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	TypeOwner OwnerType `json:"type_owner"`

	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IDNumber  *string `json:"id_number"`

	CompanyName               *string `json:"company_name"`
	CompanyRegistrationNumber *string `json:"company_registration_number"`
	TaxNumber                 *string `json:"tax_number"`
	ContactPerson             *string `json:"contact_person"`

	PhoneNumber *string   `json:"phone_number"`
	Address     *string   `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName renders the owner the way list views and spreadsheets show it.
func (o OwnerProfile) DisplayName() string {
	switch {
	case o.TypeOwner == OwnerTypeIndividual && deref(o.FirstName) != "" && deref(o.LastName) != "":
		return deref(o.FirstName) + " " + deref(o.LastName)
	case o.TypeOwner == OwnerTypeCompany && deref(o.CompanyName) != "":
		return deref(o.CompanyName)
	default:
		return fmt.Sprintf("Owner Profile (%s)", o.TypeOwner)
	}
}

// CaptainProfile holds ship captain details.
type CaptainProfile struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	LicenseNumber     string    `json:"license_number"`
	YearsOfExperience int       `json:"years_of_experience"`
	PhoneNumber       *string   `json:"phone_number"`
	Address           *string   `json:"address"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName is "first last".
func (c CaptainProfile) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
