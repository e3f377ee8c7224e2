package attachments

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type serviceImpl struct {
	logger       zerolog.Logger
	store        ObjectStore
	uploadURLTTL time.Duration
	now          func() time.Time
}

func NewService(
	logger zerolog.Logger,
	store ObjectStore,
	uploadURLTTL time.Duration,
) Service {
	return &serviceImpl{
		logger:       logger,
		store:        store,
		uploadURLTTL: uploadURLTTL,
		now:          time.Now,
	}
}

// slotKey is the object key of the task's attachment. It is the task ID
// itself so the stored reference can be derived without a lookup.
func slotKey(taskID string) string {
	return taskID
}

func (s *serviceImpl) IssueUploadReference(ctx context.Context, taskID string) (*UploadReference, error) {
	if taskID == "" {
		return nil, ErrInvalidTaskID
	}

	key := slotKey(taskID)
	expiresAt := s.now().Add(s.uploadURLTTL)
	uploadURL, err := s.store.PresignUpload(ctx, key, s.uploadURLTTL)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to presign attachment upload")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Time("expires_at", expiresAt).
		Msg("issued attachment upload url")

	return &UploadReference{
		URL:       uploadURL,
		Ref:       key,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *serviceImpl) ResolveReadReference(ref string) string {
	return s.store.ObjectURL(ref)
}

func (s *serviceImpl) DeleteAttachmentObject(ctx context.Context, taskID string) error {
	if taskID == "" {
		return ErrInvalidTaskID
	}

	err := s.store.Delete(ctx, slotKey(taskID))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete attachment object")
		return err
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted attachment object")
	return nil
}

func (s *serviceImpl) AttachmentExists(ctx context.Context, taskID string) (bool, error) {
	if taskID == "" {
		return false, ErrInvalidTaskID
	}

	exists, err := s.store.Exists(ctx, slotKey(taskID))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to check attachment object")
		return false, err
	}
	return exists, nil
}
