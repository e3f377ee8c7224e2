package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

type taskServiceImpl struct {
	logger      zerolog.Logger
	store       storage.TaskStore
	attachments attachments.Service
	now         func() time.Time
	newID       func() (string, error)
}

type TaskServiceOption func(*taskServiceImpl)

// WithClock overrides the clock used to stamp creation times.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

// WithIDGenerator overrides the task ID generator.
func WithIDGenerator(newID func() (string, error)) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.newID = newID
	}
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.TaskStore,
	attachmentService attachments.Service,
	opts ...TaskServiceOption,
) TaskService {
	s := &taskServiceImpl{
		logger:      logger,
		store:       store,
		attachments: attachmentService,
		now:         time.Now,
		newID:       newTaskID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate task id: %w", err)
	}
	return id.String(), nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	tasks, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to list tasks")
		return nil, err
	}

	for i := range tasks {
		s.resolveAttachment(&tasks[i])
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task, err := s.findTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	s.resolveAttachment(task)

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", ownerID).
		Msg("task found")
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		s.logger.Error().
			Str("user_id", ownerID).
			Msg("task name is empty")
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	err := validateDueDate(params.DueDate)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("invalid due date")
		return nil, err
	}

	taskID, err := s.newID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task id")
		return nil, err
	}

	task := models.Task{
		OwnerID:   ownerID,
		ID:        taskID,
		Name:      name,
		CreatedAt: s.now().UTC(),
		DueDate:   params.DueDate,
	}
	if params.Done != nil {
		task.Done = *params.Done
	}

	created, err := s.store.Insert(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", created.ID).
		Str("user_id", ownerID).
		Msg("created task")
	return created, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, ownerID, taskID string, update models.TaskUpdate) error {
	update.Name = strings.TrimSpace(update.Name)
	if update.Name == "" {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task name is empty")
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	err := validateDueDate(update.DueDate)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("invalid due date")
		return err
	}

	_, err = s.findTask(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, ownerID, taskID, update)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", ownerID).
		Msg("updated task")
	return nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	task, err := s.store.GetOne(ctx, ownerID, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return err
	}
	if task == nil {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", ownerID).
			Msg("task to delete not found")
		return nil
	}

	// The object goes first so a failure in between never leaves a
	// deleted record whose attachment is still stored.
	attachmentErr := s.attachments.DeleteAttachmentObject(ctx, taskID)
	if attachmentErr != nil {
		s.logger.Warn().
			Err(attachmentErr).
			Str("task_id", taskID).
			Msg("failed to delete attachment object")
	}

	err = s.store.Delete(ctx, ownerID, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return errors.Join(err, attachmentErr)
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", ownerID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) RequestAttachmentUpload(ctx context.Context, ownerID, taskID string) (*attachments.UploadReference, error) {
	_, err := s.findTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	ref, err := s.attachments.IssueUploadReference(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to issue attachment upload url")
		return nil, err
	}

	err = s.store.SetAttachmentRef(ctx, ownerID, taskID, ref.Ref)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to set attachment reference")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", ownerID).
		Msg("issued attachment upload url")
	return ref, nil
}

// findTask performs the owner-scoped lookup every mutation starts with.
func (s *taskServiceImpl) findTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task, err := s.store.GetOne(ctx, ownerID, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	if task == nil {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", ownerID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskServiceImpl) resolveAttachment(task *models.Task) {
	if !task.HasAttachment() {
		return
	}
	task.AttachmentURL = s.attachments.ResolveReadReference(*task.AttachmentRef)
}

var dueDateLayouts = []string{time.DateOnly, time.RFC3339}

func validateDueDate(dueDate *string) error {
	if dueDate == nil {
		return nil
	}
	for _, layout := range dueDateLayouts {
		_, err := time.Parse(layout, *dueDate)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: due date %q is not a date", ErrInvalidInput, *dueDate)
}
