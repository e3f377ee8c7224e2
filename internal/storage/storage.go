// Package storage defines the owner-scoped task persistence contract
// implemented by the dynamo, postgres and memory drivers.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyExists = errors.New("task already exists")
	ErrStoreUnavailable  = errors.New("task store unavailable")
)

// TaskStore persists tasks keyed by (owner ID, task ID).
//
// All lookups take the owner ID first. Backend failures are returned
// wrapping ErrStoreUnavailable.
type TaskStore interface {
	// Insert writes a new task. It returns ErrTaskAlreadyExists if the key is taken.
	Insert(ctx context.Context, task models.Task) (*models.Task, error)

	// ListByOwner returns all tasks of the owner, or an empty slice.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)

	// GetOne returns the task or nil if it does not exist for the owner.
	GetOne(ctx context.Context, ownerID, taskID string) (*models.Task, error)

	// Update overwrites name, due date and done flag. It never touches the
	// creation time or the attachment reference. It returns ErrTaskNotFound
	// if the task does not exist.
	Update(ctx context.Context, ownerID, taskID string, update models.TaskUpdate) error

	// SetAttachmentRef sets the attachment reference only. It returns
	// ErrTaskNotFound if the task does not exist.
	SetAttachmentRef(ctx context.Context, ownerID, taskID, ref string) error

	// Delete removes the task. Deleting a missing task is not an error.
	Delete(ctx context.Context, ownerID, taskID string) error
}
