package profileloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// Loaders batch owner and captain profile reads issued while rendering one
// request. Missing profiles load as nil without an error.
type Loaders struct {
	Owners   *dataloader.Loader
	Captains *dataloader.Loader
}

// NewLoaders builds request-scoped loaders over the profile repository.
func NewLoaders(repo repository.ProfileRepository) *Loaders {
	owners := batchFunc(func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]any, error) {
		profiles, err := repo.ListOwnersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]any, len(profiles))
		for _, p := range profiles {
			byID[p.ID] = p
		}
		return byID, nil
	})
	captains := batchFunc(func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]any, error) {
		profiles, err := repo.ListCaptainsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]any, len(profiles))
		for _, p := range profiles {
			byID[p.ID] = p
		}
		return byID, nil
	})

	return &Loaders{
		Owners:   dataloader.NewBatchedLoader(owners, dataloader.WithWait(5*time.Millisecond)),
		Captains: dataloader.NewBatchedLoader(captains, dataloader.WithWait(5*time.Millisecond)),
	}
}

func batchFunc(fetch func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]any, error)) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		// Convert keys to []uuid.UUID
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return errorResults(len(keys), fmt.Errorf("invalid UUID: %w", err))
			}
			ids[i] = id
		}

		byID, err := fetch(ctx, ids)
		if err != nil {
			return errorResults(len(keys), err)
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: byID[id]}
		}
		return results
	}
}

func errorResults(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

// Owner loads one owner profile, or nil if it does not exist.
func (l *Loaders) Owner(ctx context.Context, id uuid.UUID) (*domain.OwnerProfile, error) {
	data, err := l.Owners.Load(ctx, keyOf(id))()
	if err != nil {
		return nil, err
	}
	profile, ok := data.(domain.OwnerProfile)
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// Captain loads one captain profile, or nil if it does not exist.
func (l *Loaders) Captain(ctx context.Context, id uuid.UUID) (*domain.CaptainProfile, error) {
	data, err := l.Captains.Load(ctx, keyOf(id))()
	if err != nil {
		return nil, err
	}
	profile, ok := data.(domain.CaptainProfile)
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func keyOf(id uuid.UUID) dataloader.Key {
	return dataloader.StringKey(id.String())
}

// OwnersByID loads many owner profiles in one batch. Missing ids are absent
// from the result.
func (l *Loaders) OwnersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OwnerProfile, error) {
	data, errs := l.Owners.LoadMany(ctx, keysOf(ids))()
	if err := firstError(errs); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.OwnerProfile, len(data))
	for _, d := range data {
		if p, ok := d.(domain.OwnerProfile); ok {
			out[p.ID] = p
		}
	}
	return out, nil
}

// CaptainsByID loads many captain profiles in one batch.
func (l *Loaders) CaptainsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.CaptainProfile, error) {
	data, errs := l.Captains.LoadMany(ctx, keysOf(ids))()
	if err := firstError(errs); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.CaptainProfile, len(data))
	for _, d := range data {
		if p, ok := d.(domain.CaptainProfile); ok {
			out[p.ID] = p
		}
	}
	return out, nil
}

func keysOf(ids []uuid.UUID) dataloader.Keys {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	return keys
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
