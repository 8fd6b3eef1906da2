package httpx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tidytask/tidytask/internal/shared"
)

// Postgres error codes surfaced by constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// StatusFor maps a domain or storage error onto an HTTP status and a
// caller-safe message. Unrecognized errors collapse to 500 so internals
// never leak through the envelope.
func StatusFor(err error) (int, string) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case pgUniqueViolation:
			return http.StatusConflict, "Unique constraint failed"
		case pgForeignKeyViolation:
			return http.StatusBadRequest, "Foreign key constraint violation"
		}
		return http.StatusInternalServerError, "Internal server error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// RespondError maps the error onto the envelope and writes it.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusFor(err)
	Fail(w, r, status, message)
}
