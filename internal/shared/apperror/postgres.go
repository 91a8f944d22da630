package apperror

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// MapPersistenceError turns a driver error into an AppError. Unique
// violations become conflicts so racing writers get a 409 instead of a
// generic 500; anything else wraps as a persistence error.
func MapPersistenceError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return Wrap(err, CodeConflict, "A record with the same identity already exists", http.StatusConflict)
	}

	return Wrap(err, CodePersistence, message, http.StatusInternalServerError)
}
