package todos

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

// Handler manages todo endpoints.
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

// MountRoutes registers todo routes. Everything requires authentication;
// id-bearing routes run behind the ownership gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.Authenticate)

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/user/{userId}", h.listByUser)

	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireTodoOwner)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type createTodoRequest struct {
	Name               string  `json:"name" validate:"required,min=1"`
	Description        *string `json:"description"`
	IsComplete         bool    `json:"isComplete"`
	CompletedTodoImage *string `json:"completedTodoImage" validate:"omitempty,url"`
}

type updateTodoRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=1"`
	Description        *string `json:"description"`
	IsComplete         *bool   `json:"isComplete"`
	CompletedTodoImage *string `json:"completedTodoImage" validate:"omitempty,url"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())

	var req createTodoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailValidation(w, r, err)
		return
	}

	todo, err := h.service.Create(r.Context(), *identity, CreateInput{
		Name:               req.Name,
		Description:        req.Description,
		IsComplete:         req.IsComplete,
		CompletedTodoImage: req.CompletedTodoImage,
	})
	if err != nil {
		h.logger.Error("create todo failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, todo)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())

	var ownerFilter *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
			return
		}
		ownerFilter = &parsed
	}

	todos, err := h.service.List(r.Context(), *identity, ownerFilter)
	if err != nil {
		h.logger.Error("list todos failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	if todos == nil {
		todos = []Todo{}
	}
	httpx.JSON(w, http.StatusOK, todos)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}

	todos, err := h.service.ListByUser(r.Context(), *identity, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("list todos by user failed", slog.String("user", userID.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	if todos == nil {
		todos = []Todo{}
	}
	httpx.JSON(w, http.StatusOK, todos)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}
	todo, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("get todo failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todo)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}

	var req updateTodoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailValidation(w, r, err)
		return
	}

	todo, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:               req.Name,
		Description:        req.Description,
		IsComplete:         req.IsComplete,
		CompletedTodoImage: req.CompletedTodoImage,
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("update todo failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todo)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, r, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("delete todo failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}
