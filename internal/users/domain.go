package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/shared"
)

// User represents a user account.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Name         *string     `json:"name"`
	Role         shared.Role `json:"role"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
