package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	"github.com/adanyl0v/go-todo-attachments/internal/models"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTaskNotFound = errors.New("task not found")
)

type TaskService interface {
	// ListTasks returns all tasks of the owner with attachment references
	// resolved into download URLs.
	ListTasks(ctx context.Context, ownerID string) ([]models.Task, error)

	// GetTask returns a single task of the owner with its attachment
	// reference resolved.
	//
	// It returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another owner.
	GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error)

	// CreateTask generates an ID, stamps the creation time and stores
	// the task.
	//
	// It returns ErrInvalidInput if the name is empty or the due
	// date is malformed, without writing anything.
	CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error)

	// UpdateTask overwrites the name, due date and done flag of the task.
	// A nil due date clears it.
	//
	// It returns ErrTaskNotFound if the task doesn't exist or belongs
	// to another owner, and ErrInvalidInput if the update is invalid.
	UpdateTask(ctx context.Context, ownerID, taskID string, update models.TaskUpdate) error

	// DeleteTask removes the attachment object and then the task.
	// Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, ownerID, taskID string) error

	// RequestAttachmentUpload issues an upload URL for the task's
	// attachment slot and records the reference on the task right away.
	//
	// It returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another owner.
	RequestAttachmentUpload(ctx context.Context, ownerID, taskID string) (*attachments.UploadReference, error)
}

type CreateTaskParams struct {
	Name    string
	DueDate *string
	Done    *bool
}
