package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidytask/tidytask/internal/shared"
)

// TodoInvalidator busts cached todo listings. Listings embed the owner's
// public fields, so any change to those fields counts as a todo mutation.
type TodoInvalidator interface {
	Bump(ctx context.Context) error
}

// Service handles user directory business logic.
type Service struct {
	repo   Repository
	todos  TodoInvalidator
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, todos TodoInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, todos: todos, logger: logger}
}

// CreateInput carries the fields accepted when creating a user.
type CreateInput struct {
	Email    string
	Password string
	Name     *string
	Role     shared.Role
}

// UpdateInput carries a partial profile update; nil fields are left untouched.
type UpdateInput struct {
	Email    *string
	Password *string
	Name     *string
	Role     *shared.Role
}

// Create stores a new user with a bcrypt-hashed password. The role defaults
// to USER unless explicitly elevated.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	role := in.Role
	if role == "" {
		role = shared.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, CreateParams{
		Email:        in.Email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: string(hash),
	})
}

// List returns all users, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail returns a single user by email, hash included.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Update applies a partial update, re-hashing the password when present.
// Email and name are joined into cached todo listings, so changing either
// invalidates the todo cache.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (User, error) {
	params := UpdateParams{
		Email: in.Email,
		Name:  in.Name,
		Role:  in.Role,
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		hashed := string(hash)
		params.PasswordHash = &hashed
	}
	user, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return User{}, err
	}
	if in.Email != nil || in.Name != nil {
		s.bumpTodos(ctx)
	}
	return user, nil
}

// Remove deletes the user together with their todos.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bumpTodos(ctx)
	return nil
}

func (s *Service) bumpTodos(ctx context.Context) {
	if s.todos == nil {
		return
	}
	if err := s.todos.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("todo cache bump", slog.Any("error", err))
	}
}
