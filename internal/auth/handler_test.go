package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tidytask/tidytask/internal/auth"
)

func newAuthRouter(t *testing.T, directory auth.UserDirectory) http.Handler {
	t.Helper()
	service := auth.NewService(directory, auth.NewTokenManager("sekrit", time.Hour))
	handler := auth.NewHandler(newTestLogger(), service)
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	router := newAuthRouter(t, &stubDirectory{})

	res := postJSON(t, router, "/auth/register", `{"email":"new@test.local","password":"password1","name":"New User"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "new@test.local", body["email"])
	require.Equal(t, "USER", body["role"])
	require.NotContains(t, res.Body.String(), "password")
}

func TestRegisterDuplicateEmailEnvelope(t *testing.T) {
	router := newAuthRouter(t, &stubDirectory{})

	res := postJSON(t, router, "/auth/register", `{"email":"dup@test.local","password":"password1"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(t, router, "/auth/register", `{"email":"dup@test.local","password":"password1"}`)
	require.Equal(t, http.StatusConflict, res.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &envelope))
	require.Equal(t, false, envelope["success"])
	require.Equal(t, float64(http.StatusConflict), envelope["statusCode"])
	require.Equal(t, "/auth/register", envelope["path"])
	require.Equal(t, http.MethodPost, envelope["method"])
	require.NotEmpty(t, envelope["timestamp"])
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	router := newAuthRouter(t, &stubDirectory{})

	res := postJSON(t, router, "/auth/register", `{"email":"not-an-email","password":"password1"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = postJSON(t, router, "/auth/register", `{"email":"short@test.local","password":"abc"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = postJSON(t, router, "/auth/register", `{"email":"role@test.local","password":"password1","role":"ROOT"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginEndpoint(t *testing.T) {
	directory := &stubDirectory{}
	router := newAuthRouter(t, directory)

	res := postJSON(t, router, "/auth/register", `{"email":"user@test.local","password":"password1"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(t, router, "/auth/login", `{"email":"user@test.local","password":"password1"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var body loginBody
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.Equal(t, "user@test.local", body.User.Email)
}

type loginBody struct {
	Token string `json:"token"`
	User  struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func TestLoginWrongPasswordEndpoint(t *testing.T) {
	directory := &stubDirectory{}
	router := newAuthRouter(t, directory)

	res := postJSON(t, router, "/auth/register", `{"email":"user@test.local","password":"password1"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(t, router, "/auth/login", `{"email":"user@test.local","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Contains(t, res.Body.String(), "Invalid email or password")

	res = postJSON(t, router, "/auth/login", `{"email":"ghost@test.local","password":"whatever"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
