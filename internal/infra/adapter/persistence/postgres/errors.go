package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tlwd-backend/internal/domain/entity"
)

const uniqueViolation = "23505"

// conflictOr maps a unique constraint violation to an entity.ConflictError
// carrying message, and returns every other error unchanged.
func conflictOr(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &entity.ConflictError{Message: message}
	}
	return err
}
