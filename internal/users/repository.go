package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidytask/tidytask/internal/platform/db"
	"github.com/tidytask/tidytask/internal/shared"
)

// ErrEmailTaken indicates the email uniqueness constraint was violated.
var ErrEmailTaken = fmt.Errorf("email already taken: %w", shared.ErrConflict)

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries the fields persisted for a new user.
type CreateParams struct {
	Email        string
	Name         *string
	Role         shared.Role
	PasswordHash string
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Email        *string
	Name         *string
	Role         *shared.Role
	PasswordHash *string
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, role, password_hash) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		params.Email, params.Name, params.Role, params.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return user, nil
}

func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Update applies the non-nil fields and returns the stored row.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	argPos := 0

	appendSet := func(column string, value interface{}) {
		argPos++
		sets = append(sets, column+" = $"+strconv.Itoa(argPos))
		args = append(args, value)
	}
	if params.Email != nil {
		appendSet("email", *params.Email)
	}
	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.Role != nil {
		appendSet("role", *params.Role)
	}
	if params.PasswordHash != nil {
		appendSet("password_hash", *params.PasswordHash)
	}

	argPos++
	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(argPos) + ` RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, mapConstraint(err)
	}
	return user, nil
}

// Delete removes the user and their todos in one transaction. The todos
// foreign key also cascades; deleting explicitly keeps the row count
// observable and the transaction boundary in application code.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM todos WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
