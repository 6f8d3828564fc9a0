package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// memStore is an in-memory Store keyed by natural key.
type memStore[R Keyed] struct {
	ids       map[string]uuid.UUID
	records   map[uuid.UUID]R
	writes    int
	failWrite map[string]error
	failFind  error
}

func newMemStore[R Keyed]() *memStore[R] {
	return &memStore[R]{
		ids:       map[string]uuid.UUID{},
		records:   map[uuid.UUID]R{},
		failWrite: map[string]error{},
	}
}

func (s *memStore[R]) FindIDByKey(_ context.Context, key string) (uuid.UUID, bool, error) {
	if s.failFind != nil {
		return uuid.Nil, false, s.failFind
	}
	id, ok := s.ids[key]
	return id, ok, nil
}

func (s *memStore[R]) Create(_ context.Context, record R) (uuid.UUID, error) {
	if err := s.failWrite[record.NaturalKey()]; err != nil {
		return uuid.Nil, err
	}
	s.writes++
	id := uuid.New()
	s.ids[record.NaturalKey()] = id
	s.records[id] = record
	return id, nil
}

func (s *memStore[R]) Replace(_ context.Context, id uuid.UUID, record R) error {
	if err := s.failWrite[record.NaturalKey()]; err != nil {
		return err
	}
	s.writes++
	s.records[id] = record
	return nil
}

func strPtr(s string) *string { return &s }

func TestReconcileCreatesThenReplaces(t *testing.T) {
	store := newMemStore[FishingAreaRecord]()
	reconciler := NewReconciler[FishingAreaRecord]("code", store)
	ctx := context.Background()

	first := reconciler.Reconcile(ctx, 1, FishingAreaRecord{Name: "North Reef", Code: "NR01", Description: strPtr("demo")})
	if first.Kind != OutcomeCreated || first.ID == nil {
		t.Fatalf("expected created outcome, got %+v", first)
	}

	second := reconciler.Reconcile(ctx, 1, FishingAreaRecord{Name: "North Reef II", Code: "NR01"})
	if second.Kind != OutcomeUpdated || second.ID == nil || *second.ID != *first.ID {
		t.Fatalf("expected update of %s, got %+v", *first.ID, second)
	}

	stored := store.records[*first.ID]
	if stored.Name != "North Reef II" || stored.Description != nil {
		t.Fatalf("expected full replace, got %+v", stored)
	}
	if store.writes != 2 {
		t.Fatalf("expected one write per row, got %d", store.writes)
	}
}

func TestReconcileMissingKeyNeverWrites(t *testing.T) {
	store := newMemStore[FishingAreaRecord]()
	reconciler := NewReconciler[FishingAreaRecord]("code", store)

	outcome := reconciler.Reconcile(context.Background(), 5, FishingAreaRecord{Name: "Nameless", Code: "  "})
	if outcome.Kind != OutcomeErrored || !strings.Contains(outcome.Message, "code") {
		t.Fatalf("expected errored outcome naming code, got %+v", outcome)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}

func TestReconcileWriteFailureIsRowScoped(t *testing.T) {
	store := newMemStore[RoleRecord]()
	store.failWrite["Admin"] = errors.New("duplicate key")
	reconciler := NewReconciler[RoleRecord]("name", store)
	ctx := context.Background()

	failed := reconciler.Reconcile(ctx, 1, RoleRecord{Name: "Admin"})
	if failed.Kind != OutcomeErrored || !strings.Contains(failed.Message, "duplicate key") {
		t.Fatalf("expected errored outcome, got %+v", failed)
	}

	ok := reconciler.Reconcile(ctx, 2, RoleRecord{Name: "Viewer"})
	if ok.Kind != OutcomeCreated {
		t.Fatalf("later rows must still process, got %+v", ok)
	}
}

func TestReconcileLookupFailure(t *testing.T) {
	store := newMemStore[RoleRecord]()
	store.failFind = errors.New("timeout")
	reconciler := NewReconciler[RoleRecord]("name", store)

	outcome := reconciler.Reconcile(context.Background(), 1, RoleRecord{Name: "Admin"})
	if outcome.Kind != OutcomeErrored {
		t.Fatalf("expected errored outcome, got %+v", outcome)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes after failed lookup")
	}
}
