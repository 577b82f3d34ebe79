package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ocha-app/ocha/internal/domain"
)

// ThreadService handles owner-scoped thread operations.
type ThreadService struct {
	threadRepo  domain.ThreadRepository
	messageRepo domain.MessageRepository
}

// NewThreadService creates a new thread service
func NewThreadService(threadRepo domain.ThreadRepository, messageRepo domain.MessageRepository) *ThreadService {
	return &ThreadService{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
	}
}

// Create starts a new empty thread owned by the caller.
func (s *ThreadService) Create(ctx context.Context, user domain.User, title string) (*domain.Thread, error) {
	if title == "" {
		title = "New Chat"
	}
	now := time.Now()
	thread := &domain.Thread{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// List returns the caller's threads, most recently active first.
func (s *ThreadService) List(ctx context.Context, user domain.User) ([]domain.Thread, error) {
	return s.threadRepo.ListByUser(ctx, user.ID)
}

// Get returns a thread with its messages. Threads owned by other users are
// reported as absent.
func (s *ThreadService) Get(ctx context.Context, user domain.User, id string) (*domain.ThreadDetail, error) {
	thread, err := s.resolveOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return &domain.ThreadDetail{
		Thread:   thread,
		Messages: messages,
		IsOwner:  true,
	}, nil
}

// AddMessage appends a single text message to a thread the caller owns.
func (s *ThreadService) AddMessage(ctx context.Context, user domain.User, threadID string, role domain.MessageRole, content string) (*domain.Message, error) {
	if !domain.ValidRole(role) {
		return nil, domain.E(domain.KindValidation, "invalid message role")
	}
	if _, err := s.resolveOwned(ctx, user, threadID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Parts:     []domain.Part{domain.TextPart(content)},
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Rename sets a thread's title.
func (s *ThreadService) Rename(ctx context.Context, user domain.User, id string, title string) (*domain.Thread, error) {
	if _, err := s.resolveOwned(ctx, user, id); err != nil {
		return nil, err
	}
	if err := s.threadRepo.UpdateTitle(ctx, id, title); err != nil {
		return nil, err
	}
	return s.threadRepo.Get(ctx, id)
}

// Delete removes a thread and all its messages.
func (s *ThreadService) Delete(ctx context.Context, user domain.User, id string) error {
	if _, err := s.resolveOwned(ctx, user, id); err != nil {
		return err
	}
	return s.threadRepo.Delete(ctx, id)
}

// resolveOwned loads a thread and hides its existence from non-owners by
// answering not-found for both missing and foreign threads.
func (s *ThreadService) resolveOwned(ctx context.Context, user domain.User, id string) (*domain.Thread, error) {
	thread, err := s.threadRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if thread.UserID != user.ID {
		return nil, domain.E(domain.KindNotFound, "thread not found")
	}
	return thread, nil
}
