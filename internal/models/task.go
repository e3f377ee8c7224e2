package models

import "time"

// Task is a single todo item owned by one user.
//
// OwnerID and ID together form the storage key. AttachmentRef holds the
// object key of the attachment slot once an upload reference was issued,
// AttachmentURL is the display-ready form of it and is never persisted.
type Task struct {
	OwnerID       string
	ID            string
	Name          string
	CreatedAt     time.Time
	DueDate       *string
	Done          bool
	AttachmentRef *string
	AttachmentURL string
}

// HasAttachment reports whether an attachment slot was assigned to the task.
func (t *Task) HasAttachment() bool {
	return t.AttachmentRef != nil && *t.AttachmentRef != ""
}

// TaskUpdate replaces all mutable fields of a task. A nil DueDate clears it.
type TaskUpdate struct {
	Name    string
	DueDate *string
	Done    bool
}
