package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidytask/tidytask/internal/auth"
	"github.com/tidytask/tidytask/internal/shared"
	"github.com/tidytask/tidytask/internal/users"
)

type stubDirectory struct {
	byEmail map[string]users.User
	created []users.CreateInput
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *stubDirectory) Create(ctx context.Context, in users.CreateInput) (users.User, error) {
	if _, ok := s.byEmail[in.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	s.created = append(s.created, in)
	role := in.Role
	if role == "" {
		role = shared.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		return users.User{}, err
	}
	user := users.User{ID: uuid.New(), Email: in.Email, Name: in.Name, Role: role, PasswordHash: string(hash)}
	if s.byEmail == nil {
		s.byEmail = make(map[string]users.User)
	}
	s.byEmail[in.Email] = user
	return user, nil
}

func (s *stubDirectory) FindByEmail(ctx context.Context, email string) (users.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return user, nil
}

func newService(t *testing.T, directory auth.UserDirectory) *auth.Service {
	t.Helper()
	return auth.NewService(directory, auth.NewTokenManager("sekrit", time.Hour))
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	directory := &stubDirectory{}
	service := newService(t, directory)

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "new@test.local",
		Password: "password1",
	})
	require.NoError(t, err)
	require.Equal(t, shared.RoleUser, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	directory := &stubDirectory{}
	service := newService(t, directory)

	_, err := service.Register(context.Background(), auth.RegisterInput{Email: "dup@test.local", Password: "password1"})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), auth.RegisterInput{Email: "dup@test.local", Password: "password1"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	userID := uuid.New()
	directory := &stubDirectory{byEmail: map[string]users.User{
		"user@test.local": {ID: userID, Email: "user@test.local", Role: shared.RoleUser, PasswordHash: string(hash)},
	}}
	service := newService(t, directory)

	token, user, err := service.Login(context.Background(), "user@test.local", "correctpass")
	require.NoError(t, err)
	require.Equal(t, userID, user.ID)

	identity, err := service.Verify(token)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
	require.Equal(t, shared.RoleUser, identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	directory := &stubDirectory{byEmail: map[string]users.User{
		"user@test.local": {ID: uuid.New(), Email: "user@test.local", Role: shared.RoleUser, PasswordHash: string(hash)},
	}}
	service := newService(t, directory)

	_, _, err = service.Login(context.Background(), "user@test.local", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service := newService(t, &stubDirectory{})

	_, _, err := service.Login(context.Background(), "ghost@test.local", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
