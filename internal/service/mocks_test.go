package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
)

// MockThreadRepository mocks the ThreadRepository interface
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockThreadRepository) Get(ctx context.Context, id string) (*domain.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockThreadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockThreadRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListRecent(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, threadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockIdentityVerifier mocks security.IdentityVerifier
type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, credential string) (*domain.User, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubProvider is a hand-rolled llm.Provider that records the request it
// received and replays a scripted stream. Mocking the callback through
// testify is more trouble than it is worth.
type stubProvider struct {
	name       string
	chunks     []llm.Chunk
	result     *llm.Result
	err        error
	gotRequest *llm.Request
	gotModel   string
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) AvailableModels() []string { return []string{"stub-model"} }
func (p *stubProvider) DefaultModel() string      { return "stub-model" }
func (p *stubProvider) IsConfigured() bool        { return true }

func (p *stubProvider) Stream(ctx context.Context, req llm.Request, model string, fn llm.StreamFunc) (*llm.Result, error) {
	p.gotRequest = &req
	p.gotModel = model
	if p.err != nil {
		return nil, p.err
	}
	for _, chunk := range p.chunks {
		if err := fn(chunk); err != nil {
			return nil, err
		}
	}
	if p.result != nil {
		return p.result, nil
	}
	return &llm.Result{Model: model}, nil
}
