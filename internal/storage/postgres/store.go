package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

//go:embed schema.sql
var schema string

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewStore(logger zerolog.Logger, pgPool *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		pgPool: pgPool,
	}
}

// Migrate creates the tasks table if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pgPool.Exec(ctx, schema)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to apply schema")
		return unavailable("apply schema", err)
	}
	s.logger.Info().Msg("applied tasks schema")
	return nil
}

func (s *Store) Insert(ctx context.Context, task models.Task) (*models.Task, error) {
	task.AttachmentURL = ""

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   id,
                   name,
                   created_at,
                   due_date,
                   done,
                   attachment_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.OwnerID,
		task.ID,
		task.Name,
		task.CreatedAt,
		task.DueDate,
		task.Done,
		task.AttachmentRef,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				s.logger.Error().
					Str("task_id", task.ID).
					Str("user_id", task.OwnerID).
					Msg("task already exists")
				return nil, storage.ErrTaskAlreadyExists
			}
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert task")
		return nil, unavailable("insert task", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return &task, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       name,
       created_at,
       due_date,
       done,
       attachment_ref
FROM tasks
WHERE user_id = $1
ORDER BY created_at, id
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByUserIDQuery,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to select tasks by user id")
		return nil, unavailable("select tasks", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task := models.Task{OwnerID: ownerID}
		err = rows.Scan(
			&task.ID,
			&task.Name,
			&task.CreatedAt,
			&task.DueDate,
			&task.Done,
			&task.AttachmentRef,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, unavailable("iterate over rows", err)
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *Store) GetOne(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task := &models.Task{
		OwnerID: ownerID,
		ID:      taskID,
	}

	const selectTaskQuery = `
SELECT name,
       created_at,
       due_date,
       done,
       attachment_ref
FROM tasks
WHERE user_id = $1 AND id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		task.OwnerID,
		task.ID,
	).Scan(
		&task.Name,
		&task.CreatedAt,
		&task.DueDate,
		&task.Done,
		&task.AttachmentRef,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, unavailable("select task", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("selected task")
	return task, nil
}

func (s *Store) Update(ctx context.Context, ownerID, taskID string, update models.TaskUpdate) error {
	const updateTaskQuery = `
UPDATE tasks
SET name = $1,
    due_date = $2,
    done = $3
WHERE user_id = $4 AND id = $5
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		update.Name,
		update.DueDate,
		update.Done,
		ownerID,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return unavailable("update task", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", ownerID).
			Msg("task not found")
		return storage.ErrTaskNotFound
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task")
	return nil
}

func (s *Store) SetAttachmentRef(ctx context.Context, ownerID, taskID, ref string) error {
	const updateAttachmentQuery = `
UPDATE tasks
SET attachment_ref = $1
WHERE user_id = $2 AND id = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateAttachmentQuery,
		ref,
		ownerID,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task attachment")
		return unavailable("update task attachment", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", ownerID).
			Msg("task not found")
		return storage.ErrTaskNotFound
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task attachment")
	return nil
}

func (s *Store) Delete(ctx context.Context, ownerID, taskID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE user_id = $1 AND id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		ownerID,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return unavailable("delete task", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted task")
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", storage.ErrStoreUnavailable, op, err)
}
