package accounts

import (
	"strings"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/pkg/validator"

	"github.com/google/uuid"
)

// RegisterInput is the account part shared by every registration flow.
type RegisterInput struct {
	Username  string     `json:"username" validate:"required,max=150"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	Password2 string     `json:"password2" validate:"required"`
	RoleID    *uuid.UUID `json:"role_id"`
}

// OwnerRegistration registers a ship owner.
type OwnerRegistration struct {
	RegisterInput
	OwnerType string       `json:"owner_type"`
	Profile   OwnerDetails `json:"profile"`
}

// OwnerDetails carries the profile fields of either owner type.
type OwnerDetails struct {
	FirstName                 string `json:"first_name"`
	LastName                  string `json:"last_name"`
	IDNumber                  string `json:"id_number"`
	CompanyName               string `json:"company_name"`
	CompanyRegistrationNumber string `json:"company_registration_number"`
	TaxNumber                 string `json:"tax_number"`
	ContactPerson             string `json:"contact_person"`
	PhoneNumber               string `json:"phone_number"`
	Address                   string `json:"address"`
}

func (d OwnerDetails) requireFor(t domain.OwnerType, errs validator.FieldErrors) {
	check := func(field, value, message string) {
		if strings.TrimSpace(value) == "" {
			errs.Add("profile."+field, message)
		}
	}
	switch t {
	case domain.OwnerTypeIndividual:
		check("first_name", d.FirstName, "First name is required for individual owners")
		check("last_name", d.LastName, "Last name is required for individual owners")
		check("id_number", d.IDNumber, "ID number is required for individual owners")
	case domain.OwnerTypeCompany:
		check("company_name", d.CompanyName, "Company name is required for company owners")
		check("company_registration_number", d.CompanyRegistrationNumber, "Company registration number is required for company owners")
		check("tax_number", d.TaxNumber, "Tax number is required for company owners")
		check("contact_person", d.ContactPerson, "Contact person is required for company owners")
	}
}

func (d OwnerDetails) toDomain(userID uuid.UUID, t domain.OwnerType) domain.OwnerProfile {
	ts := now()
	p := domain.OwnerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		TypeOwner:   t,
		PhoneNumber: optional(d.PhoneNumber),
		Address:     optional(d.Address),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if t == domain.OwnerTypeIndividual {
		p.FirstName = optional(d.FirstName)
		p.LastName = optional(d.LastName)
		p.IDNumber = optional(d.IDNumber)
	} else {
		p.CompanyName = optional(d.CompanyName)
		p.CompanyRegistrationNumber = optional(d.CompanyRegistrationNumber)
		p.TaxNumber = optional(d.TaxNumber)
		p.ContactPerson = optional(d.ContactPerson)
	}
	return p
}

// CaptainRegistration registers a ship captain.
type CaptainRegistration struct {
	RegisterInput
	Profile CaptainDetails `json:"profile"`
}

// CaptainDetails carries the captain profile fields.
type CaptainDetails struct {
	FirstName         string `json:"first_name" validate:"required,max=50"`
	LastName          string `json:"last_name" validate:"required,max=50"`
	LicenseNumber     string `json:"license_number" validate:"required,max=30"`
	YearsOfExperience int    `json:"years_of_experience" validate:"gte=0"`
	PhoneNumber       string `json:"phone_number" validate:"max=15"`
	Address           string `json:"address"`
}

func (d CaptainDetails) toDomain(userID uuid.UUID) domain.CaptainProfile {
	ts := now()
	return domain.CaptainProfile{
		ID:                uuid.New(),
		UserID:            userID,
		FirstName:         strings.TrimSpace(d.FirstName),
		LastName:          strings.TrimSpace(d.LastName),
		LicenseNumber:     strings.TrimSpace(d.LicenseNumber),
		YearsOfExperience: d.YearsOfExperience,
		PhoneNumber:       optional(d.PhoneNumber),
		Address:           optional(d.Address),
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
}

// UserView is the public shape of an account.
type UserView struct {
	ID       uuid.UUID    `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     *domain.Role `json:"role"`
}

func newUserView(u domain.User, role *domain.Role) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: role}
}

// Profile is a user with role and any owner or captain profile.
type Profile struct {
	UserView
	OwnerProfile   *domain.OwnerProfile   `json:"owner_profile"`
	CaptainProfile *domain.CaptainProfile `json:"captain_profile"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
