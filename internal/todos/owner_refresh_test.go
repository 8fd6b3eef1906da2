package todos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tidytask/tidytask/internal/shared"
	"github.com/tidytask/tidytask/internal/todos"
	"github.com/tidytask/tidytask/internal/users"
)

// ownerDirectory adapts memoryTodoRepo into a users.Repository so profile
// updates land on the same owner records the todo listings join in.
type ownerDirectory struct {
	todos *memoryTodoRepo
}

func (d *ownerDirectory) Create(ctx context.Context, params users.CreateParams) (users.User, error) {
	id := d.todos.addUser(params.Email)
	return users.User{ID: id, Email: params.Email, Role: params.Role}, nil
}

func (d *ownerDirectory) List(ctx context.Context) ([]users.User, error) {
	return nil, nil
}

func (d *ownerDirectory) Get(ctx context.Context, id uuid.UUID) (users.User, error) {
	owner, ok := d.todos.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return users.User{ID: owner.ID, Email: owner.Email, Name: owner.Name}, nil
}

func (d *ownerDirectory) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return users.User{}, shared.ErrNotFound
}

func (d *ownerDirectory) Update(ctx context.Context, id uuid.UUID, params users.UpdateParams) (users.User, error) {
	owner, ok := d.todos.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	if params.Email != nil {
		owner.Email = *params.Email
	}
	if params.Name != nil {
		owner.Name = params.Name
	}
	d.todos.users[id] = owner
	for todoID, todo := range d.todos.byID {
		if todo.UserID == id {
			todo.User = owner
			d.todos.byID[todoID] = todo
		}
	}
	return users.User{ID: owner.ID, Email: owner.Email, Name: owner.Name}, nil
}

func (d *ownerDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	return shared.ErrNotFound
}

func TestListingsRefreshAfterProfileUpdate(t *testing.T) {
	repo := newMemoryTodoRepo()
	cache := newTestCache(t)
	todoService := todos.NewService(repo, cache, nil)
	userService := users.NewService(&ownerDirectory{todos: repo}, cache, nil)

	ctx := context.Background()
	owner, err := userService.Create(ctx, users.CreateInput{Email: "old@test.local", Password: "password1"})
	require.NoError(t, err)
	caller := identityFor(owner.ID, shared.RoleUser)

	_, err = todoService.Create(ctx, caller, todos.CreateInput{Name: "buy milk"})
	require.NoError(t, err)

	// Warm the cache with the old owner fields.
	list, err := todoService.List(ctx, caller, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "old@test.local", list[0].User.Email)

	email := "new@test.local"
	_, err = userService.Update(ctx, owner.ID, users.UpdateInput{Email: &email})
	require.NoError(t, err)

	list, err = todoService.List(ctx, caller, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "new@test.local", list[0].User.Email)
}
