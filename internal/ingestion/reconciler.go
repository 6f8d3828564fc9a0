package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Keyed records expose the value of their natural key.
type Keyed interface {
	NaturalKey() string
}

// Store is the read/write capability the reconciler needs for one resource.
type Store[R Keyed] interface {
	// FindIDByKey returns found=false with a nil error when no entity has the key.
	FindIDByKey(ctx context.Context, key string) (id uuid.UUID, found bool, err error)
	Create(ctx context.Context, record R) (uuid.UUID, error)
	// Replace overwrites every field of the entity with the record's values.
	Replace(ctx context.Context, id uuid.UUID, record R) error
}

// Reconciler applies create-or-update by natural key.
type Reconciler[R Keyed] struct {
	keyField string
	store    Store[R]
}

// NewReconciler creates a reconciler keyed on keyField.
func NewReconciler[R Keyed](keyField string, store Store[R]) *Reconciler[R] {
	return &Reconciler[R]{keyField: keyField, store: store}
}

// Reconcile performs exactly one write for the record, or none when the key
// is missing or the lookup fails.
func (r *Reconciler[R]) Reconcile(ctx context.Context, row int, record R) RowOutcome {
	key := strings.TrimSpace(record.NaturalKey())
	if key == "" {
		return Errored(row, fmt.Errorf("%s: This field is required.", r.keyField))
	}

	id, found, err := r.store.FindIDByKey(ctx, key)
	if err != nil {
		return Errored(row, &PersistenceError{Row: row, Op: fmt.Sprintf("look up %s %q", r.keyField, key), Err: err})
	}

	if !found {
		created, err := r.store.Create(ctx, record)
		if err != nil {
			return Errored(row, &PersistenceError{Row: row, Op: fmt.Sprintf("create %s %q", r.keyField, key), Err: err})
		}
		return Created(row, created)
	}

	if err := r.store.Replace(ctx, id, record); err != nil {
		return Errored(row, &PersistenceError{Row: row, Op: fmt.Sprintf("update %s %q", r.keyField, key), Err: err})
	}
	return Updated(row, id)
}
