// Package memory is an in-process TaskStore used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

type Store struct {
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]map[string]models.Task
}

func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		logger: logger,
		tasks:  make(map[string]map[string]models.Task),
	}
}

func (s *Store) Insert(_ context.Context, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.tasks[task.OwnerID]
	if !ok {
		owned = make(map[string]models.Task)
		s.tasks[task.OwnerID] = owned
	}
	if _, exists := owned[task.ID]; exists {
		s.logger.Error().
			Str("task_id", task.ID).
			Str("user_id", task.OwnerID).
			Msg("task already exists")
		return nil, storage.ErrTaskAlreadyExists
	}

	task.AttachmentURL = ""
	owned[task.ID] = cloneTask(task)
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")

	inserted := cloneTask(task)
	return &inserted, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.tasks[ownerID]
	tasks := make([]models.Task, 0, len(owned))
	for _, task := range owned {
		tasks = append(tasks, cloneTask(task))
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *Store) GetOne(_ context.Context, ownerID, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[ownerID][taskID]
	if !ok {
		return nil, nil
	}
	found := cloneTask(task)
	return &found, nil
}

func (s *Store) Update(_ context.Context, ownerID, taskID string, update models.TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[ownerID][taskID]
	if !ok {
		return storage.ErrTaskNotFound
	}
	task.Name = update.Name
	task.DueDate = cloneString(update.DueDate)
	task.Done = update.Done
	s.tasks[ownerID][taskID] = task

	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task")
	return nil
}

func (s *Store) SetAttachmentRef(_ context.Context, ownerID, taskID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[ownerID][taskID]
	if !ok {
		return storage.ErrTaskNotFound
	}
	task.AttachmentRef = &ref
	s.tasks[ownerID][taskID] = task

	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task attachment")
	return nil
}

func (s *Store) Delete(_ context.Context, ownerID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks[ownerID], taskID)
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func cloneTask(task models.Task) models.Task {
	task.DueDate = cloneString(task.DueDate)
	task.AttachmentRef = cloneString(task.AttachmentRef)
	return task
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
