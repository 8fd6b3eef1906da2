package todos

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/shared"
)

// Service handles todo business logic. Listing operations force the owner
// filter for non-admin callers before any query is issued, so a caller can
// never widen their view through request parameters.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CreateInput carries the fields accepted when creating a todo.
type CreateInput struct {
	Name               string
	Description        *string
	IsComplete         bool
	CompletedTodoImage *string
}

// UpdateInput carries a partial todo update; nil fields are left untouched.
type UpdateInput struct {
	Name               *string
	Description        *string
	IsComplete         *bool
	CompletedTodoImage *string
}

// Create stores a new todo owned by the caller.
func (s *Service) Create(ctx context.Context, caller shared.Identity, in CreateInput) (Todo, error) {
	todo, err := s.repo.Create(ctx, CreateParams{
		Name:               in.Name,
		Description:        in.Description,
		IsComplete:         in.IsComplete,
		CompletedTodoImage: in.CompletedTodoImage,
		UserID:             caller.UserID,
	})
	if err != nil {
		return Todo{}, err
	}
	s.bump(ctx)
	return todo, nil
}

// List returns todos visible to the caller. Admins may filter by any owner;
// everyone else is restricted to their own todos regardless of the filter.
func (s *Service) List(ctx context.Context, caller shared.Identity, ownerFilter *uuid.UUID) ([]Todo, error) {
	if !caller.IsAdmin() {
		own := caller.UserID
		ownerFilter = &own
	}
	return s.listCached(ctx, ownerFilter)
}

// ListByUser returns the todos of one user. Non-admin callers are
// auto-restricted to their own id; an unknown user yields ErrNotFound.
func (s *Service) ListByUser(ctx context.Context, caller shared.Identity, userID uuid.UUID) ([]Todo, error) {
	if !caller.IsAdmin() {
		userID = caller.UserID
	}
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return s.listCached(ctx, &userID)
}

// Get returns a single todo. The ownership gate runs before this is reached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Todo, error) {
	return s.repo.Get(ctx, id)
}

// OwnerID exposes the owning user id for the ownership gate.
func (s *Service) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return s.repo.OwnerID(ctx, id)
}

// Update applies a partial update, failing with ErrNotFound for unknown ids.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Todo, error) {
	todo, err := s.repo.Update(ctx, id, UpdateParams{
		Name:               in.Name,
		Description:        in.Description,
		IsComplete:         in.IsComplete,
		CompletedTodoImage: in.CompletedTodoImage,
	})
	if err != nil {
		return Todo{}, err
	}
	s.bump(ctx)
	return todo, nil
}

// Remove deletes a todo, failing with ErrNotFound for unknown ids.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) listCached(ctx context.Context, ownerFilter *uuid.UUID) ([]Todo, error) {
	ownerToken := "all"
	if ownerFilter != nil {
		ownerToken = ownerFilter.String()
	}
	key, err := s.cache.BuildKey(ctx, "todos", "list", ownerToken)
	if err != nil {
		// Cache trouble must not take listings down; fall through to the db.
		s.warn("cache key", err)
		return s.repo.List(ctx, ownerFilter)
	}

	var todos []Todo
	err = s.cache.FetchJSON(ctx, key, &todos, func(ctx context.Context) (interface{}, error) {
		loaded, err := s.repo.List(ctx, ownerFilter)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			loaded = []Todo{}
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.warn("cache bump", err)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}
