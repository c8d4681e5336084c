package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// PostgreSQL SQLSTATE codes surfaced as conflicts
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// mapWriteError classifies a failed write. Constraint violations become
// conflicts, everything else is internal.
func mapWriteError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return apperrors.NewConflictError(message+": still referenced by other records", err)
		case pqUniqueViolation:
			return apperrors.NewConflictError(message+": duplicate record", err)
		}
	}
	return apperrors.NewInternalError(message, err)
}

// execAffecting runs a write that must touch at least one row
func execAffecting(ctx context.Context, client *postgres.Client, query string, args []interface{}, failMsg, notFoundMsg string) error {
	result, err := client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(failMsg, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFoundMsg)
	}
	return nil
}

// getOptional loads a single row into dest, reporting whether it existed
func getOptional(ctx context.Context, client *postgres.Client, dest interface{}, query string, args []interface{}) (bool, error) {
	err := client.DB().GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// observe records the duration of a database operation
func observe(ctx context.Context, metrics *observability.Metrics, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, metrics, operation, time.Since(start))
}
