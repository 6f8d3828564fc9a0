package ingestion

import (
	"context"
	"strings"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/repository"

	"github.com/google/uuid"
)

// PartyLookup finds owner and captain profiles by fragments of their display
// names. Matching is case-insensitive substring matching.
type PartyLookup interface {
	OwnersByPersonName(ctx context.Context, first, last string) ([]uuid.UUID, error)
	OwnersByCompanyName(ctx context.Context, name string) ([]uuid.UUID, error)
	CaptainsByPersonName(ctx context.Context, first, last string) ([]uuid.UUID, error)
	CaptainsByNameToken(ctx context.Context, token string) ([]uuid.UUID, error)
}

// Resolver turns display names from import rows into profile identifiers.
type Resolver struct {
	lookup PartyLookup
}

// NewResolver creates a resolver over lookup.
func NewResolver(lookup PartyLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ResolveOwner maps an owner display name to exactly one owner profile. A
// name with whitespace is matched as "first last"; a single token is matched
// against company names.
func (r *Resolver) ResolveOwner(ctx context.Context, row int, field, name string) (uuid.UUID, error) {
	first, last, split := splitName(name)

	var (
		ids []uuid.UUID
		err error
	)
	if split {
		ids, err = r.lookup.OwnersByPersonName(ctx, first, last)
	} else {
		ids, err = r.lookup.OwnersByCompanyName(ctx, first)
	}
	if err != nil {
		return uuid.Nil, &PersistenceError{Row: row, Op: "look up " + field, Err: err}
	}
	return exactlyOne(row, field, name, ids)
}

// ResolveCaptain maps an optional captain display name to a captain profile.
// Blank names resolve to nil. Captains have no company name, so a single
// token is matched against either name column.
func (r *Resolver) ResolveCaptain(ctx context.Context, row int, field, name string) (*uuid.UUID, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	first, last, split := splitName(name)

	var (
		ids []uuid.UUID
		err error
	)
	if split {
		ids, err = r.lookup.CaptainsByPersonName(ctx, first, last)
	} else {
		ids, err = r.lookup.CaptainsByNameToken(ctx, first)
	}
	if err != nil {
		return nil, &PersistenceError{Row: row, Op: "look up " + field, Err: err}
	}
	id, err := exactlyOne(row, field, name, ids)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func splitName(name string) (first, last string, split bool) {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return "", "", false
	case 1:
		return tokens[0], "", false
	default:
		return tokens[0], strings.Join(tokens[1:], " "), true
	}
}

func exactlyOne(row int, field, name string, ids []uuid.UUID) (uuid.UUID, error) {
	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return uuid.Nil, &ReferenceNotFoundError{Row: row, Field: field, Name: name}
	default:
		return uuid.Nil, &ReferenceNotFoundError{Row: row, Field: field, Name: name, Matches: len(ids), Ambiguous: true}
	}
}

// profileLookup adapts the profile repository to PartyLookup.
type profileLookup struct {
	profiles repository.ProfileRepository
}

// NewProfileLookup builds a PartyLookup backed by the profile repository.
func NewProfileLookup(profiles repository.ProfileRepository) PartyLookup {
	return &profileLookup{profiles: profiles}
}

func (l *profileLookup) OwnersByPersonName(ctx context.Context, first, last string) ([]uuid.UUID, error) {
	owners, err := l.profiles.FindOwnersByPersonName(ctx, first, last)
	return ownerIDs(owners), err
}

func (l *profileLookup) OwnersByCompanyName(ctx context.Context, name string) ([]uuid.UUID, error) {
	owners, err := l.profiles.FindOwnersByCompanyName(ctx, name)
	return ownerIDs(owners), err
}

func (l *profileLookup) CaptainsByPersonName(ctx context.Context, first, last string) ([]uuid.UUID, error) {
	captains, err := l.profiles.FindCaptainsByPersonName(ctx, first, last)
	return captainIDs(captains), err
}

func (l *profileLookup) CaptainsByNameToken(ctx context.Context, token string) ([]uuid.UUID, error) {
	captains, err := l.profiles.FindCaptainsByNameToken(ctx, token)
	return captainIDs(captains), err
}

func ownerIDs(owners []domain.OwnerProfile) []uuid.UUID {
	ids := make([]uuid.UUID, len(owners))
	for i, o := range owners {
		ids[i] = o.ID
	}
	return ids
}

func captainIDs(captains []domain.CaptainProfile) []uuid.UUID {
	ids := make([]uuid.UUID, len(captains))
	for i, c := range captains {
		ids[i] = c.ID
	}
	return ids
}
