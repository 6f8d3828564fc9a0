package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rpattn/fleetreg/internal/auth"
	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/repository"
	"github.com/rpattn/fleetreg/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	repository.UserRepository
	byID map[uuid.UUID]domain.User
}

func (m *memUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return domain.User{}, fmt.Errorf("failed to create user: %w: Key (username)=(%s) already exists", domain.ErrConflict, u.Username)
		}
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) List(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

type memProfiles struct {
	repository.ProfileRepository
	owners     map[uuid.UUID]domain.OwnerProfile
	captains   map[uuid.UUID]domain.CaptainProfile
	failOwners bool
}

func (m *memProfiles) CreateOwner(_ context.Context, p domain.OwnerProfile) (domain.OwnerProfile, error) {
	if m.failOwners {
		return domain.OwnerProfile{}, errors.New("disk full")
	}
	m.owners[p.UserID] = p
	return p, nil
}

func (m *memProfiles) CreateCaptain(_ context.Context, p domain.CaptainProfile) (domain.CaptainProfile, error) {
	for _, c := range m.captains {
		if c.LicenseNumber == p.LicenseNumber {
			return domain.CaptainProfile{}, fmt.Errorf("failed to create captain profile: %w", domain.ErrConflict)
		}
	}
	m.captains[p.UserID] = p
	return p, nil
}

func (m *memProfiles) GetOwnerByUser(_ context.Context, userID uuid.UUID) (domain.OwnerProfile, error) {
	p, ok := m.owners[userID]
	if !ok {
		return domain.OwnerProfile{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memProfiles) GetCaptainByUser(_ context.Context, userID uuid.UUID) (domain.CaptainProfile, error) {
	p, ok := m.captains[userID]
	if !ok {
		return domain.CaptainProfile{}, domain.ErrNotFound
	}
	return p, nil
}

type memUserRoles struct {
	repository.UserRoleRepository
	assigned []domain.UserRole
}

func (m *memUserRoles) Create(_ context.Context, a domain.UserRole) (domain.UserRole, error) {
	m.assigned = append(m.assigned, a)
	return a, nil
}

type memRoles struct {
	repository.RoleRepository
	roles []domain.Role
}

func (m *memRoles) GetByID(_ context.Context, id uuid.UUID) (domain.Role, error) {
	for _, r := range m.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Role{}, domain.ErrNotFound
}

func (m *memRoles) GetByName(_ context.Context, name string) (domain.Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return domain.Role{}, domain.ErrNotFound
}

func (m *memRoles) List(context.Context) ([]domain.Role, error) { return m.roles, nil }

// memTx stages writes in fresh stores and copies them over on success.
type memTx struct {
	users     *memUsers
	profiles  *memProfiles
	userRoles *memUserRoles
}

func (t *memTx) WithinTx(_ context.Context, fn func(repository.TxRepositories) error) error {
	users := &memUsers{byID: map[uuid.UUID]domain.User{}}
	for k, v := range t.users.byID {
		users.byID[k] = v
	}
	profiles := &memProfiles{
		owners:     map[uuid.UUID]domain.OwnerProfile{},
		captains:   map[uuid.UUID]domain.CaptainProfile{},
		failOwners: t.profiles.failOwners,
	}
	for k, v := range t.profiles.owners {
		profiles.owners[k] = v
	}
	for k, v := range t.profiles.captains {
		profiles.captains[k] = v
	}
	userRoles := &memUserRoles{assigned: append([]domain.UserRole(nil), t.userRoles.assigned...)}

	if err := fn(repository.TxRepositories{Users: users, Profiles: profiles, UserRoles: userRoles}); err != nil {
		return err
	}
	t.users.byID = users.byID
	t.profiles.owners = profiles.owners
	t.profiles.captains = profiles.captains
	t.userRoles.assigned = userRoles.assigned
	return nil
}

type fixture struct {
	service   *Service
	users     *memUsers
	profiles  *memProfiles
	userRoles *memUserRoles
	roles     *memRoles
}

func newFixture(roles ...domain.Role) fixture {
	f := fixture{
		users:     &memUsers{byID: map[uuid.UUID]domain.User{}},
		profiles:  &memProfiles{owners: map[uuid.UUID]domain.OwnerProfile{}, captains: map[uuid.UUID]domain.CaptainProfile{}},
		userRoles: &memUserRoles{},
		roles:     &memRoles{roles: roles},
	}
	f.service = NewService(f.users, f.profiles, f.roles, &memTx{users: f.users, profiles: f.profiles, userRoles: f.userRoles})
	f.service.hashCost = bcrypt.MinCost
	return f
}

func account(username string) RegisterInput {
	return RegisterInput{Username: username, Email: username + "@example.com", Password: "s3cret-pass", Password2: "s3cret-pass"}
}

func fieldErrors(t *testing.T, err error) validator.FieldErrors {
	t.Helper()
	var fe validator.FieldErrors
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestRegisterHashesPassword(t *testing.T) {
	f := newFixture()

	view, err := f.service.Register(context.Background(), account("budi"))
	require.NoError(t, err)
	assert.Equal(t, "budi", view.Username)
	assert.Nil(t, view.Role)

	stored := f.users.byID[view.ID]
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, CheckPassword(stored, "s3cret-pass"))
	assert.False(t, CheckPassword(stored, "wrong"))
}

func TestRegisterPasswordRules(t *testing.T) {
	f := newFixture()

	in := account("budi")
	in.Password2 = "different-pass"
	fe := fieldErrors(t, mustFail(f.service.Register(context.Background(), in)))
	assert.Equal(t, []string{"Passwords must match"}, fe["non_field_errors"])

	in = account("budi")
	in.Password, in.Password2 = "12345678", "12345678"
	fe = fieldErrors(t, mustFail(f.service.Register(context.Background(), in)))
	assert.Contains(t, fe["password"], "This password is entirely numeric.")

	in = account("budi")
	in.Password, in.Password2 = "short", "short"
	fe = fieldErrors(t, mustFail(f.service.Register(context.Background(), in)))
	assert.Contains(t, fe["password"], "Ensure this field has at least 8 characters.")

	in = account("budi")
	in.Password = strings.Repeat("a", 73)
	in.Password2 = in.Password
	fe = fieldErrors(t, mustFail(f.service.Register(context.Background(), in)))
	assert.Contains(t, fe["password"], "Ensure this field has no more than 72 bytes.")

	assert.Empty(t, f.users.byID)
}

func TestRegisterUnknownRoleIsIgnored(t *testing.T) {
	f := newFixture()
	in := account("budi")
	missing := uuid.New()
	in.RoleID = &missing

	view, err := f.service.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, view.Role)
	assert.Nil(t, f.users.byID[view.ID].RoleID)
	assert.Empty(t, f.userRoles.assigned)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture()
	_, err := f.service.Register(context.Background(), account("budi"))
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), account("budi"))
	fe := fieldErrors(t, err)
	assert.Equal(t, []string{"A user with that username already exists."}, fe["username"])
}

func TestRegisterOwnerIndividual(t *testing.T) {
	ownerRole := domain.NewRole(domain.RoleShipOwner, "", true)
	f := newFixture(ownerRole)
	actor := uuid.New()
	ctx := auth.ContextWithUserID(context.Background(), actor)

	view, err := f.service.RegisterOwner(ctx, OwnerRegistration{
		RegisterInput: account("siti"),
		Profile:       OwnerDetails{FirstName: "Siti", LastName: "Rahma", IDNumber: "3201"},
	})
	require.NoError(t, err)
	require.NotNil(t, view.Role)
	assert.Equal(t, ownerRole.ID, view.Role.ID)

	owner := f.profiles.owners[view.ID]
	assert.Equal(t, domain.OwnerTypeIndividual, owner.TypeOwner)
	assert.Equal(t, "Siti Rahma", owner.DisplayName())
	assert.Nil(t, owner.CompanyName)

	require.Len(t, f.userRoles.assigned, 1)
	assert.Equal(t, &actor, f.userRoles.assigned[0].AssignedBy)
}

func TestRegisterOwnerCompanyRequiresFields(t *testing.T) {
	f := newFixture()

	_, err := f.service.RegisterOwner(context.Background(), OwnerRegistration{
		RegisterInput: account("pt-laut"),
		OwnerType:     "company",
		Profile:       OwnerDetails{CompanyName: "PT Laut"},
	})
	fe := fieldErrors(t, err)
	assert.Contains(t, fe, "profile.company_registration_number")
	assert.Contains(t, fe, "profile.tax_number")
	assert.Contains(t, fe, "profile.contact_person")
	assert.NotContains(t, fe, "profile.company_name")
	assert.Empty(t, f.users.byID)
}

func TestRegisterOwnerInvalidTypePersistsNothing(t *testing.T) {
	f := newFixture()

	_, err := f.service.RegisterOwner(context.Background(), OwnerRegistration{
		RegisterInput: account("x"),
		OwnerType:     "cooperative",
	})
	require.ErrorIs(t, err, ErrInvalidOwnerType)
	assert.Empty(t, f.users.byID)
}

func TestRegisterOwnerProfileFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.profiles.failOwners = true

	_, err := f.service.RegisterOwner(context.Background(), OwnerRegistration{
		RegisterInput: account("siti"),
		Profile:       OwnerDetails{FirstName: "Siti", LastName: "Rahma", IDNumber: "3201"},
	})
	require.Error(t, err)
	assert.Empty(t, f.users.byID)
}

func TestRegisterCaptain(t *testing.T) {
	captainRole := domain.NewRole(domain.RoleShipCaptain, "", true)
	f := newFixture(captainRole)

	details := CaptainDetails{FirstName: "Agus", LastName: "Salim", LicenseNumber: "LIC-1", YearsOfExperience: 7}
	view, err := f.service.RegisterCaptain(context.Background(), CaptainRegistration{
		RegisterInput: account("agus"),
		Profile:       details,
	})
	require.NoError(t, err)
	require.NotNil(t, view.Role)
	assert.Equal(t, domain.RoleShipCaptain, view.Role.Name)

	_, err = f.service.RegisterCaptain(context.Background(), CaptainRegistration{
		RegisterInput: account("agus2"),
		Profile:       details,
	})
	fe := fieldErrors(t, err)
	assert.Contains(t, fe, "profile.license_number")
	assert.Len(t, f.users.byID, 1)
}

func TestRegisterCaptainValidatesProfile(t *testing.T) {
	f := newFixture()

	_, err := f.service.RegisterCaptain(context.Background(), CaptainRegistration{
		RegisterInput: account("agus"),
		Profile:       CaptainDetails{LastName: "Salim", YearsOfExperience: -1},
	})
	fe := fieldErrors(t, err)
	assert.Equal(t, []string{"This field is required."}, fe["profile.first_name"])
	assert.Equal(t, []string{"This field is required."}, fe["profile.license_number"])
	assert.Contains(t, fe, "profile.years_of_experience")
}

func TestGetAndListProfiles(t *testing.T) {
	captainRole := domain.NewRole(domain.RoleShipCaptain, "", true)
	f := newFixture(captainRole)
	ctx := context.Background()

	captain, err := f.service.RegisterCaptain(ctx, CaptainRegistration{
		RegisterInput: account("agus"),
		Profile:       CaptainDetails{FirstName: "Agus", LastName: "Salim", LicenseNumber: "LIC-1"},
	})
	require.NoError(t, err)
	plain, err := f.service.Register(ctx, account("budi"))
	require.NoError(t, err)

	p, err := f.service.Get(ctx, captain.ID)
	require.NoError(t, err)
	require.NotNil(t, p.CaptainProfile)
	assert.Equal(t, "LIC-1", p.CaptainProfile.LicenseNumber)
	assert.Nil(t, p.OwnerProfile)
	require.NotNil(t, p.Role)

	_, err = f.service.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, item := range all {
		if item.ID == plain.ID {
			assert.Nil(t, item.Role)
			assert.Nil(t, item.CaptainProfile)
		}
	}
}

func mustFail(_ UserView, err error) error { return err }
