package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/authz"
	"github.com/tidytask/tidytask/internal/platform/httpx"
	"github.com/tidytask/tidytask/internal/shared"
)

// Handler manages user directory endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authz:     mw,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes. Everything requires authentication;
// the collection and id-bearing routes additionally require ADMIN.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.Authenticate)

	r.Get("/profile", h.profile)
	r.Patch("/profile", h.updateProfile)

	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireRole(shared.RoleAdmin))
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type createUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Role     string  `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailValidation(w, r, err)
		return
	}

	user, err := h.service.Create(r.Context(), CreateInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     shared.Role(req.Role),
	})
	if err != nil {
		h.logger.Error("create user failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	h.respondUser(w, r, identity.UserID)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}
	h.respondUser(w, r, id)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	h.applyUpdate(w, r, identity.UserID)
}

// allowRoleChange reports whether the caller may change a role field.
// Self-service profile updates must not elevate the caller's own role.
func allowRoleChange(identity *shared.Identity) bool {
	return identity != nil && identity.IsAdmin()
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}
	h.applyUpdate(w, r, id)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete user failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) applyUpdate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailValidation(w, r, err)
		return
	}

	var role *shared.Role
	if req.Role != nil && allowRoleChange(shared.IdentityFromContext(r.Context())) {
		converted := shared.Role(*req.Role)
		role = &converted
	}
	user, err := h.service.Update(r.Context(), id, UpdateInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("update user failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
