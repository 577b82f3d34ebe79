package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ocha-app/ocha/internal/domain"
)

func TestThreadService_Create(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	svc := NewThreadService(threadRepo, new(MockMessageRepository))

	ctx := context.Background()
	user := domain.User{ID: "user-1"}

	t.Run("success", func(t *testing.T) {
		threadRepo.On("Create", ctx, mock.AnythingOfType("*domain.Thread")).Return(nil)

		thread, err := svc.Create(ctx, user, "Budget questions")
		assert.NoError(t, err)
		assert.Equal(t, "Budget questions", thread.Title)
		assert.Equal(t, user.ID, thread.UserID)
		assert.NotEmpty(t, thread.ID)

		threadRepo.AssertExpectations(t)
	})

	t.Run("default title", func(t *testing.T) {
		threadRepo.On("Create", ctx, mock.AnythingOfType("*domain.Thread")).Return(nil)

		thread, err := svc.Create(ctx, user, "")
		assert.NoError(t, err)
		assert.Equal(t, "New Chat", thread.Title)
	})
}

func TestThreadService_Get(t *testing.T) {
	ctx := context.Background()
	user := domain.User{ID: "user-1"}

	t.Run("returns thread with messages", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		messageRepo := new(MockMessageRepository)
		svc := NewThreadService(threadRepo, messageRepo)

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread(user.ID), nil)
		messageRepo.On("ListByThread", ctx, "thread-1").Return([]domain.Message{
			{ID: "msg-1", Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("Hi")}},
		}, nil)

		detail, err := svc.Get(ctx, user, "thread-1")
		assert.NoError(t, err)
		assert.True(t, detail.IsOwner)
		assert.Len(t, detail.Messages, 1)
	})

	t.Run("empty thread yields empty message slice", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		messageRepo := new(MockMessageRepository)
		svc := NewThreadService(threadRepo, messageRepo)

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread(user.ID), nil)
		messageRepo.On("ListByThread", ctx, "thread-1").Return(nil, nil)

		detail, err := svc.Get(ctx, user, "thread-1")
		assert.NoError(t, err)
		assert.NotNil(t, detail.Messages)
		assert.Empty(t, detail.Messages)
	})

	t.Run("foreign thread reported as not found", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		messageRepo := new(MockMessageRepository)
		svc := NewThreadService(threadRepo, messageRepo)

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread("someone-else"), nil)

		_, err := svc.Get(ctx, user, "thread-1")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		messageRepo.AssertNotCalled(t, "ListByThread", mock.Anything, mock.Anything)
	})
}

func TestThreadService_AddMessage(t *testing.T) {
	ctx := context.Background()
	user := domain.User{ID: "user-1"}

	t.Run("appends text message", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		messageRepo := new(MockMessageRepository)
		svc := NewThreadService(threadRepo, messageRepo)

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread(user.ID), nil)
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		msg, err := svc.AddMessage(ctx, user, "thread-1", domain.RoleUser, "Hi")
		assert.NoError(t, err)
		assert.Equal(t, domain.RoleUser, msg.Role)
		assert.Equal(t, "Hi", domain.FlattenParts(msg.Parts))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc := NewThreadService(new(MockThreadRepository), new(MockMessageRepository))

		_, err := svc.AddMessage(ctx, user, "thread-1", "bot", "Hi")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestThreadService_Delete(t *testing.T) {
	ctx := context.Background()
	user := domain.User{ID: "user-1"}

	t.Run("owner can delete", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		svc := NewThreadService(threadRepo, new(MockMessageRepository))

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread(user.ID), nil)
		threadRepo.On("Delete", ctx, "thread-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, user, "thread-1"))
		threadRepo.AssertCalled(t, "Delete", ctx, "thread-1")
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		threadRepo := new(MockThreadRepository)
		svc := NewThreadService(threadRepo, new(MockMessageRepository))

		threadRepo.On("Get", ctx, "thread-1").Return(ownedThread("someone-else"), nil)

		err := svc.Delete(ctx, user, "thread-1")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		threadRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestThreadService_Rename(t *testing.T) {
	ctx := context.Background()
	user := domain.User{ID: "user-1"}

	threadRepo := new(MockThreadRepository)
	svc := NewThreadService(threadRepo, new(MockMessageRepository))

	renamed := ownedThread(user.ID)
	renamed.Title = "New title"

	threadRepo.On("Get", ctx, "thread-1").Return(ownedThread(user.ID), nil).Once()
	threadRepo.On("UpdateTitle", ctx, "thread-1", "New title").Return(nil)
	threadRepo.On("Get", ctx, "thread-1").Return(renamed, nil).Once()

	thread, err := svc.Rename(ctx, user, "thread-1", "New title")
	assert.NoError(t, err)
	assert.Equal(t, "New title", thread.Title)
}
