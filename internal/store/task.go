package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// TaskUpdate describes a partial update to a task. Nil fields are
// left untouched; set fields replace the stored value.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

// TaskStore defines the interface for task data persistence.
// Every operation that reads or mutates a single task takes the
// requesting user's ID and verifies ownership before acting.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID on behalf of userID.
	// Returns ErrTaskNotFound if the task does not exist and ErrNotOwner
	// if it belongs to a different user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// ListByUser returns all tasks owned by userID ordered by descending
	// creation time (newest first).
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial update to the task identified by id.
	// Ownership is verified before the mutation is attempted.
	// Returns the updated task on success, ErrTaskNotFound or ErrNotOwner
	// otherwise.
	Update(ctx context.Context, userID, id uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete permanently removes the task identified by id.
	// Ownership is verified before the mutation is attempted.
	// Returns ErrTaskNotFound or ErrNotOwner otherwise.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
