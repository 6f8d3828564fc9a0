package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateErrorMapsDriverErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "ships_registration_number_key"}, domain.ErrConflict},
		{"foreign key", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"}), domain.ErrInvalidReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError("create ship", tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTranslateErrorKeepsOtherPgMessages(t *testing.T) {
	got := translateError("create ship", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"})
	if got.Error() != "failed to create ship: numeric field overflow" {
		t.Fatalf("unexpected message %q", got.Error())
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := likePattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Fatalf("unexpected pattern %q", got)
	}
}
