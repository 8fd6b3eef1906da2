package todos

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidytask/tidytask/internal/shared"
)

const todoColumns = `t.id, t.name, t.description, t.is_complete, t.completed_todo_image,
	t.user_id, t.created_at, t.updated_at, u.id, u.name, u.email`

const todoBaseQuery = `SELECT ` + todoColumns + ` FROM todos t JOIN users u ON u.id = t.user_id`

// Repository defines persistence operations for todos.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Todo, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]Todo, error)
	Get(ctx context.Context, id uuid.UUID) (Todo, error)
	OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Todo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries the fields persisted for a new todo.
type CreateParams struct {
	Name               string
	Description        *string
	IsComplete         bool
	CompletedTodoImage *string
	UserID             uuid.UUID
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Name               *string
	Description        *string
	IsComplete         *bool
	CompletedTodoImage *string
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Todo, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO todos (name, description, is_complete, completed_todo_image, user_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		params.Name, params.Description, params.IsComplete, params.CompletedTodoImage, params.UserID).Scan(&id)
	if err != nil {
		return Todo{}, err
	}
	return r.Get(ctx, id)
}

// List returns todos newest first, optionally restricted to one owner.
func (r *PGRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]Todo, error) {
	query := todoBaseQuery
	args := []interface{}{}
	if ownerID != nil {
		query += ` WHERE t.user_id = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var todos []Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (Todo, error) {
	row := r.pool.QueryRow(ctx, todoBaseQuery+` WHERE t.id = $1`, id)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Todo{}, shared.ErrNotFound
		}
		return Todo{}, err
	}
	return todo, nil
}

// OwnerID fetches only the owning user id, for the ownership gate.
func (r *PGRepository) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM todos WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	return ownerID, nil
}

func (r *PGRepository) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

// Update applies the non-nil fields and returns the stored row with the
// owner joined in.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Todo, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	argPos := 0

	appendSet := func(column string, value interface{}) {
		argPos++
		sets = append(sets, column+" = $"+strconv.Itoa(argPos))
		args = append(args, value)
	}
	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.Description != nil {
		appendSet("description", *params.Description)
	}
	if params.IsComplete != nil {
		appendSet("is_complete", *params.IsComplete)
	}
	if params.CompletedTodoImage != nil {
		appendSet("completed_todo_image", *params.CompletedTodoImage)
	}

	argPos++
	args = append(args, id)
	query := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(argPos) + ` RETURNING id`

	var updatedID uuid.UUID
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Todo{}, shared.ErrNotFound
		}
		return Todo{}, err
	}
	return r.Get(ctx, updatedID)
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (Todo, error) {
	var todo Todo
	err := row.Scan(
		&todo.ID, &todo.Name, &todo.Description, &todo.IsComplete, &todo.CompletedTodoImage,
		&todo.UserID, &todo.CreatedAt, &todo.UpdatedAt,
		&todo.User.ID, &todo.User.Name, &todo.User.Email,
	)
	return todo, err
}

var _ Repository = (*PGRepository)(nil)
