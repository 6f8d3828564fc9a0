package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

const defaultImportLogLimit = 200

type importLogRepository struct {
	db DBTX
}

// NewImportLogRepository wires a repository backed by the given pool or transaction.
func NewImportLogRepository(db DBTX) ImportLogRepository {
	return &importLogRepository{db: db}
}

func (r *importLogRepository) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	if r.db == nil {
		return fmt.Errorf("import log repository not initialized")
	}

	var rowNumber any
	if entry.RowNumber != nil {
		rowNumber = *entry.RowNumber
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO import_logs (resource, file_name, row_number, error_message)
		 VALUES ($1, $2, $3, $4)`,
		entry.Resource,
		entry.FileName,
		rowNumber,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}

	return nil
}

// List returns logged row errors, newest first. Empty resource or fileName
// filters match everything.
func (r *importLogRepository) List(ctx context.Context, resource string, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("import log repository not initialized")
	}

	if limit <= 0 {
		limit = defaultImportLogLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, resource, file_name, row_number, error_message, created_at
		 FROM import_logs
		 WHERE ($1 = '' OR resource = $1)
		   AND ($2 = '' OR file_name = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		resource,
		fileName,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ImportLogEntry{}
	for rows.Next() {
		var (
			entry     domain.ImportLogEntry
			rowNumber pgtype.Int4
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.Resource,
			&entry.FileName,
			&rowNumber,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", scanErr)
		}

		if rowNumber.Valid {
			value := int(rowNumber.Int32)
			entry.RowNumber = &value
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import logs: %w", rowsErr)
	}

	return logs, nil
}
