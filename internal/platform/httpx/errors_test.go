package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/tidytask/tidytask/internal/platform/httpx"
	"github.com/tidytask/tidytask/internal/shared"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "resource not found"},
		{"wrapped not found", fmt.Errorf("todo lookup: %w", shared.ErrNotFound), http.StatusNotFound, "todo lookup: resource not found"},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, pgx.ErrNoRows.Error()},
		{"conflict", shared.ErrConflict, http.StatusConflict, "duplicate entry"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, shared.ErrForbidden.Error()},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, shared.ErrUnauthorized.Error()},
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, shared.ErrInvalidCredentials.Error()},
		{"validation", shared.ErrValidation, http.StatusBadRequest, shared.ErrValidation.Error()},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "Unique constraint failed"},
		{"fk violation", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, "Foreign key constraint violation"},
		{"other pg error", &pgconn.PgError{Code: "42703"}, http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := httpx.StatusFor(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.message, message)
		})
	}
}

func TestFailEnvelopeShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/todos/abc", nil)
	rec := httptest.NewRecorder()

	httpx.Fail(rec, req, http.StatusNotFound, "Todo not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.Equal(t, http.StatusNotFound, envelope.StatusCode)
	require.Equal(t, "/api/v1/todos/abc", envelope.Path)
	require.Equal(t, http.MethodDelete, envelope.Method)
	require.Equal(t, "Todo not found", envelope.Message)
	require.Equal(t, "Not Found", envelope.Error)
	require.NotEmpty(t, envelope.Timestamp)
}

func TestRespondErrorUsesEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	httpx.RespondError(rec, req, &pgconn.PgError{Code: "23505"})

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "Unique constraint failed", envelope.Message)
	require.Equal(t, "Conflict", envelope.Error)
}
