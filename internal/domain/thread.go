package domain

import (
	"context"
	"time"
)

// Thread is a persisted conversation owned by a single user.
type Thread struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadRepository defines the interface for thread storage.
type ThreadRepository interface {
	Create(ctx context.Context, thread *Thread) error
	// Get returns a NotFound-kinded error when the thread does not exist.
	Get(ctx context.Context, id string) (*Thread, error)
	// ListByUser orders by updated_at descending, created_at descending.
	ListByUser(ctx context.Context, userID string) ([]Thread, error)
	UpdateTitle(ctx context.Context, id string, title string) error
	// Delete removes the thread and, via cascade, all of its messages.
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

// CreateThreadRequest is the POST /api/threads payload.
type CreateThreadRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

// UpdateThreadRequest is the PATCH /api/threads/{threadID} payload.
type UpdateThreadRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// ThreadDetail is the owner's view of a thread with its messages.
type ThreadDetail struct {
	Thread   *Thread   `json:"thread"`
	Messages []Message `json:"messages"`
	IsOwner  bool      `json:"isOwner"`
}
