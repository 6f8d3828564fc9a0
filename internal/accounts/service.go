package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/fleetreg/internal/auth"
	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/logging"
	"github.com/rpattn/fleetreg/internal/repository"
	"github.com/rpattn/fleetreg/pkg/validator"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidOwnerType is returned when owner_type is neither individual nor company.
var ErrInvalidOwnerType = errors.New("invalid owner type")

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Service registers back-office accounts and renders their profiles.
type Service struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	roles     repository.RoleRepository
	tx        repository.Transactor
	validator *validator.StructValidator
	hashCost  int
}

// NewService creates a new account service.
func NewService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	roles repository.RoleRepository,
	tx repository.Transactor,
) *Service {
	return &Service{
		users:     users,
		profiles:  profiles,
		roles:     roles,
		tx:        tx,
		validator: validator.NewStructValidator(),
		hashCost:  bcrypt.DefaultCost,
	}
}

// Register creates a plain account. An unknown role_id is ignored and the
// user is created without a role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	if err := s.validateAccount(in); err != nil {
		return UserView{}, err
	}
	var role *domain.Role
	if in.RoleID != nil {
		var err error
		if role, err = s.optionalRole(ctx, func() (domain.Role, error) { return s.roles.GetByID(ctx, *in.RoleID) }); err != nil {
			return UserView{}, err
		}
	}
	user, err := s.newUser(in, role)
	if err != nil {
		return UserView{}, err
	}
	err = s.tx.WithinTx(ctx, func(r repository.TxRepositories) error {
		created, err := r.Users.Create(ctx, user)
		if err != nil {
			return conflictAsFieldError(err)
		}
		user = created
		return assignRole(ctx, r, user, role)
	})
	if err != nil {
		return UserView{}, err
	}
	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return newUserView(user, role), nil
}

// RegisterOwner creates an account with an owner profile in one transaction
// and grants the ship owner role when it exists.
func (s *Service) RegisterOwner(ctx context.Context, in OwnerRegistration) (UserView, error) {
	ownerType := domain.OwnerType(strings.TrimSpace(in.OwnerType))
	if ownerType == "" {
		ownerType = domain.OwnerTypeIndividual
	}
	if !ownerType.Valid() {
		return UserView{}, ErrInvalidOwnerType
	}

	errs := validator.FieldErrors{}
	mergeFieldErrors(errs, "", s.validateAccount(in.RegisterInput))
	in.Profile.requireFor(ownerType, errs)
	if len(errs) > 0 {
		return UserView{}, errs
	}

	role, err := s.optionalRole(ctx, func() (domain.Role, error) { return s.roles.GetByName(ctx, domain.RoleShipOwner) })
	if err != nil {
		return UserView{}, err
	}
	user, err := s.newUser(in.RegisterInput, role)
	if err != nil {
		return UserView{}, err
	}

	err = s.tx.WithinTx(ctx, func(r repository.TxRepositories) error {
		created, err := r.Users.Create(ctx, user)
		if err != nil {
			return conflictAsFieldError(err)
		}
		user = created
		if _, err := r.Profiles.CreateOwner(ctx, in.Profile.toDomain(user.ID, ownerType)); err != nil {
			return fmt.Errorf("failed to create owner profile: %w", err)
		}
		return assignRole(ctx, r, user, role)
	})
	if err != nil {
		return UserView{}, err
	}
	logging.FromContext(ctx).Info("owner registered", "user_id", user.ID, "owner_type", ownerType)
	return newUserView(user, role), nil
}

// RegisterCaptain creates an account with a captain profile in one
// transaction and grants the captain role when it exists.
func (s *Service) RegisterCaptain(ctx context.Context, in CaptainRegistration) (UserView, error) {
	errs := validator.FieldErrors{}
	mergeFieldErrors(errs, "", s.validateAccount(in.RegisterInput))
	mergeFieldErrors(errs, "profile.", s.validator.Struct(in.Profile))
	if len(errs) > 0 {
		return UserView{}, errs
	}

	role, err := s.optionalRole(ctx, func() (domain.Role, error) { return s.roles.GetByName(ctx, domain.RoleShipCaptain) })
	if err != nil {
		return UserView{}, err
	}
	user, err := s.newUser(in.RegisterInput, role)
	if err != nil {
		return UserView{}, err
	}

	err = s.tx.WithinTx(ctx, func(r repository.TxRepositories) error {
		created, err := r.Users.Create(ctx, user)
		if err != nil {
			return conflictAsFieldError(err)
		}
		user = created
		if _, err := r.Profiles.CreateCaptain(ctx, in.Profile.toDomain(user.ID)); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return validator.FieldErrors{"profile.license_number": {"captain profile with this license number already exists."}}
			}
			return fmt.Errorf("failed to create captain profile: %w", err)
		}
		return assignRole(ctx, r, user, role)
	})
	if err != nil {
		return UserView{}, err
	}
	logging.FromContext(ctx).Info("captain registered", "user_id", user.ID)
	return newUserView(user, role), nil
}

// Get returns the full profile of one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	var role *domain.Role
	if user.RoleID != nil {
		if role, err = s.optionalRole(ctx, func() (domain.Role, error) { return s.roles.GetByID(ctx, *user.RoleID) }); err != nil {
			return Profile{}, err
		}
	}
	return s.profile(ctx, user, role)
}

// List returns every user with role and profiles.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	out := make([]Profile, 0, len(users))
	for _, u := range users {
		var role *domain.Role
		if u.RoleID != nil {
			if r, ok := byID[*u.RoleID]; ok {
				role = &r
			}
		}
		p, err := s.profile(ctx, u, role)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) profile(ctx context.Context, user domain.User, role *domain.Role) (Profile, error) {
	p := Profile{UserView: newUserView(user, role)}

	owner, err := s.profiles.GetOwnerByUser(ctx, user.ID)
	switch {
	case err == nil:
		p.OwnerProfile = &owner
	case !errors.Is(err, domain.ErrNotFound):
		return Profile{}, err
	}

	captain, err := s.profiles.GetCaptainByUser(ctx, user.ID)
	switch {
	case err == nil:
		p.CaptainProfile = &captain
	case !errors.Is(err, domain.ErrNotFound):
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) validateAccount(in RegisterInput) error {
	errs := validator.FieldErrors{}
	mergeFieldErrors(errs, "", s.validator.Struct(in))
	if in.Password != "" && isNumeric(in.Password) {
		errs.Add("password", "This password is entirely numeric.")
	}
	if len(in.Password) > maxPasswordBytes {
		errs.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordBytes))
	}
	if in.Password != in.Password2 {
		errs.Add("non_field_errors", "Passwords must match")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *Service) newUser(in RegisterInput, role *domain.Role) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	var roleID *uuid.UUID
	if role != nil {
		roleID = &role.ID
	}
	return domain.NewUser(strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), string(hash), roleID), nil
}

// optionalRole runs lookup and turns a missing role into nil.
func (s *Service) optionalRole(ctx context.Context, lookup func() (domain.Role, error)) (*domain.Role, error) {
	role, err := lookup()
	if errors.Is(err, domain.ErrNotFound) {
		logging.FromContext(ctx).Debug("role not found, registering without role")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// assignRole mirrors the user's primary role into the assignment table.
func assignRole(ctx context.Context, r repository.TxRepositories, user domain.User, role *domain.Role) error {
	if role == nil {
		return nil
	}
	if _, err := r.UserRoles.Create(ctx, domain.NewUserRole(user.ID, role.ID, auth.ActingUser(ctx))); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(user domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func conflictAsFieldError(err error) error {
	if !errors.Is(err, domain.ErrConflict) {
		return err
	}
	if strings.Contains(err.Error(), "(username)") {
		return validator.FieldErrors{"username": {"A user with that username already exists."}}
	}
	return validator.FieldErrors{"non_field_errors": {"A user with these details already exists."}}
}

func mergeFieldErrors(dst validator.FieldErrors, prefix string, err error) {
	if err == nil {
		return
	}
	var fe validator.FieldErrors
	if !errors.As(err, &fe) {
		dst.Add(prefix+"non_field_errors", err.Error())
		return
	}
	for field, msgs := range fe {
		for _, m := range msgs {
			dst.Add(prefix+field, m)
		}
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func now() time.Time { return time.Now() }
