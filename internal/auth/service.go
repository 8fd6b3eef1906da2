package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/tidytask/tidytask/internal/shared"
	"github.com/tidytask/tidytask/internal/users"
)

// UserDirectory is the slice of the user service the credential flows need.
type UserDirectory interface {
	Create(ctx context.Context, in users.CreateInput) (users.User, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps registration and login business rules.
type Service struct {
	directory UserDirectory
	tokens    *TokenManager
}

// NewService constructs a new Service.
func NewService(directory UserDirectory, tokens *TokenManager) *Service {
	return &Service{directory: directory, tokens: tokens}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     *string
	Role     shared.Role
}

// Register creates a new account. The directory enforces email uniqueness
// and hashes the password; the role defaults to USER.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	return s.directory.Create(ctx, users.CreateInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     in.Role,
	})
}

// Login validates email/password credentials and issues a token. Unknown
// email and hash mismatch are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, users.User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", users.User{}, shared.ErrInvalidCredentials
		}
		return "", users.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", users.User{}, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", users.User{}, err
	}
	return token, user, nil
}

// Verify resolves a bearer token into the caller's identity.
func (s *Service) Verify(token string) (*shared.Identity, error) {
	return s.tokens.Verify(token)
}
