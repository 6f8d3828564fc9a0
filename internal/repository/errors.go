package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError wraps driver errors so callers can match on the domain
// sentinels with errors.Is.
func translateError(action string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("failed to %s: %w: %s", action, domain.ErrConflict, describeConstraint(pgErr))
		case pgForeignKeyViolation:
			return fmt.Errorf("failed to %s: %w: %s", action, domain.ErrInvalidReference, describeConstraint(pgErr))
		}
		return fmt.Errorf("failed to %s: %s", action, pgErr.Message)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func describeConstraint(pgErr *pgconn.PgError) string {
	if pgErr.Detail != "" {
		return strings.TrimSuffix(pgErr.Detail, ".")
	}
	return pgErr.ConstraintName
}

func checkAffected(action string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to %s: %w", action, domain.ErrNotFound)
	}
	return nil
}

// likePattern escapes LIKE metacharacters and wraps the term for a substring match.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
