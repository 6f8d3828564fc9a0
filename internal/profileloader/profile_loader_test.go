package profileloader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/repository"

	"github.com/google/uuid"
)

type countingProfileRepo struct {
	repository.ProfileRepository
	mu       sync.Mutex
	calls    int
	owners   map[uuid.UUID]domain.OwnerProfile
	captains map[uuid.UUID]domain.CaptainProfile
	err      error
}

func (r *countingProfileRepo) ListOwnersByIDs(_ context.Context, ids []uuid.UUID) ([]domain.OwnerProfile, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.OwnerProfile
	for _, id := range ids {
		if p, ok := r.owners[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *countingProfileRepo) ListCaptainsByIDs(_ context.Context, ids []uuid.UUID) ([]domain.CaptainProfile, error) {
	var out []domain.CaptainProfile
	for _, id := range ids {
		if p, ok := r.captains[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestOwnerLoadsAreBatched(t *testing.T) {
	a := domain.OwnerProfile{ID: uuid.New(), TypeOwner: domain.OwnerTypeIndividual}
	b := domain.OwnerProfile{ID: uuid.New(), TypeOwner: domain.OwnerTypeCompany}
	repo := &countingProfileRepo{owners: map[uuid.UUID]domain.OwnerProfile{a.ID: a, b.ID: b}}
	loaders := NewLoaders(repo)
	ctx := context.Background()

	thunkA := loaders.Owners.Load(ctx, keyOf(a.ID))
	thunkB := loaders.Owners.Load(ctx, keyOf(b.ID))
	if _, err := thunkA(); err != nil {
		t.Fatalf("load a: %v", err)
	}
	if _, err := thunkB(); err != nil {
		t.Fatalf("load b: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected a single batched query, got %d", repo.calls)
	}

	got, err := loaders.Owner(ctx, b.ID)
	if err != nil || got == nil || got.ID != b.ID {
		t.Fatalf("expected owner %s, got %v, %v", b.ID, got, err)
	}
}

func TestMissingProfileLoadsNil(t *testing.T) {
	loaders := NewLoaders(&countingProfileRepo{})

	captain, err := loaders.Captain(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captain != nil {
		t.Fatalf("expected nil captain, got %+v", captain)
	}
}

func TestRepositoryErrorPropagates(t *testing.T) {
	loaders := NewLoaders(&countingProfileRepo{err: errors.New("db down")})

	if _, err := loaders.Owner(context.Background(), uuid.New()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOwnersByIDUsesOneBatch(t *testing.T) {
	a := domain.OwnerProfile{ID: uuid.New(), TypeOwner: domain.OwnerTypeIndividual}
	b := domain.OwnerProfile{ID: uuid.New(), TypeOwner: domain.OwnerTypeCompany}
	repo := &countingProfileRepo{owners: map[uuid.UUID]domain.OwnerProfile{a.ID: a, b.ID: b}}
	loaders := NewLoaders(repo)

	got, err := loaders.OwnersByID(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("load many: %v", err)
	}
	if len(got) != 2 || got[a.ID].ID != a.ID || got[b.ID].ID != b.ID {
		t.Fatalf("unexpected result: %+v", got)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one repository call, got %d", repo.calls)
	}
}
