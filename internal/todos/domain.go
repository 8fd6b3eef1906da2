package todos

import (
	"time"

	"github.com/google/uuid"
)

// Owner carries the public fields of the owning user joined into responses.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Name  *string   `json:"name"`
	Email string    `json:"email"`
}

// Todo represents a todo item scoped to an owning user.
type Todo struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	IsComplete         bool      `json:"isComplete"`
	CompletedTodoImage *string   `json:"completedTodoImage"`
	UserID             uuid.UUID `json:"userId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	User               Owner     `json:"user"`
}
