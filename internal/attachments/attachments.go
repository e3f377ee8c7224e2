package attachments

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidTaskID          = errors.New("invalid task id")
	ErrObjectStoreUnavailable = errors.New("object store unavailable")
)

// ObjectStore holds attachment bytes. Implementations wrap backend
// failures with ErrObjectStoreUnavailable.
type ObjectStore interface {
	// PresignUpload returns a URL that allows a single PUT of the object
	// identified by key until ttl elapses.
	PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error)

	// ObjectURL returns the URL clients use to fetch the object. It performs no I/O.
	ObjectURL(key string) string

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the object is present.
	Exists(ctx context.Context, key string) (bool, error)
}

type Service interface {
	// IssueUploadReference grants write access to the attachment slot of
	// the task. Repeated calls for the same task target the same slot.
	IssueUploadReference(ctx context.Context, taskID string) (*UploadReference, error)

	// ResolveReadReference turns a stored attachment reference into a URL
	// clients can download from.
	ResolveReadReference(ref string) string

	// DeleteAttachmentObject removes the attachment slot of the task,
	// regardless of whether a task still references it.
	DeleteAttachmentObject(ctx context.Context, taskID string) error

	// AttachmentExists reports whether the attachment slot of the task holds an object.
	AttachmentExists(ctx context.Context, taskID string) (bool, error)
}

type UploadReference struct {
	// URL is the time-limited upload URL handed to the client.
	URL string
	// Ref is the value stored on the task record.
	Ref       string
	ExpiresAt time.Time
}
