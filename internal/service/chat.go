package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
	"github.com/rs/zerolog/log"
)

// ChatService orchestrates one chat turn: replaying stored history,
// invoking the completion engine, and recording both sides of the
// exchange.
type ChatService struct {
	threadRepo   domain.ThreadRepository
	messageRepo  domain.MessageRepository
	llmRouter    *llm.Router
	historyLimit int
	strict       bool
}

// NewChatService creates a new chat service
func NewChatService(
	threadRepo domain.ThreadRepository,
	messageRepo domain.MessageRepository,
	llmRouter *llm.Router,
	cfg config.ChatConfig,
) *ChatService {
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 20
	}
	return &ChatService{
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		llmRouter:    llmRouter,
		historyLimit: limit,
		strict:       cfg.Strict(),
	}
}

// StreamTurn executes one chat turn, forwarding engine chunks to fn as
// they are produced. The user message is persisted before the engine is
// invoked; the assistant message is persisted only after the engine
// completes. With best-effort persistence, storage failures on either
// write are logged and never abort the turn.
func (s *ChatService) StreamTurn(ctx context.Context, user domain.User, req domain.ChatRequest, fn llm.StreamFunc) (*llm.Result, error) {
	provider, err := s.llmRouter.GetProvider(req.Provider)
	if err != nil {
		return nil, domain.Wrap(domain.KindConfiguration, "completion engine unavailable", err)
	}

	// Oldest request shape: a raw message list with no thread. Streams a
	// completion without touching the store.
	if req.ThreadID == "" && len(req.Messages) > 0 {
		return s.streamStateless(ctx, provider, req, fn)
	}

	if req.ThreadID == "" {
		return nil, domain.E(domain.KindValidation, "threadId is required")
	}
	if req.Content == "" {
		return nil, domain.E(domain.KindValidation, "content is required")
	}

	thread, err := s.threadRepo.Get(ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.UserID != user.ID {
		// Hide existence from non-owners.
		return nil, domain.E(domain.KindNotFound, "thread not found")
	}

	history, err := s.messageRepo.ListRecent(ctx, req.ThreadID, s.historyLimit)
	if err != nil {
		log.Error().Err(err).Str("thread_id", req.ThreadID).Msg("failed to load chat history")
		history = nil
	}

	userMsg := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  req.ThreadID,
		Role:      domain.RoleUser,
		Parts:     []domain.Part{domain.TextPart(req.Content)},
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		if s.strict {
			return nil, err
		}
		// The turn still proceeds with the in-memory message: the primary
		// contract is delivering a response, not guaranteeing storage.
		log.Error().Err(err).Str("thread_id", req.ThreadID).Msg("failed to save user message")
	}

	turns := append(history, *userMsg)
	result, err := provider.Stream(ctx, llm.Request{Messages: turns}, req.Model, fn)
	if err != nil {
		return nil, domain.Wrap(domain.KindGeneration, "completion failed", err)
	}

	if err := s.saveAssistantMessage(ctx, req.ThreadID, result); err != nil {
		if s.strict {
			return result, err
		}
		log.Error().Err(err).Str("thread_id", req.ThreadID).Msg("failed to save assistant message")
	}

	return result, nil
}

func (s *ChatService) streamStateless(ctx context.Context, provider llm.Provider, req domain.ChatRequest, fn llm.StreamFunc) (*llm.Result, error) {
	messages := make([]domain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if !domain.ValidRole(m.Role) {
			return nil, domain.E(domain.KindValidation, "invalid message role")
		}
		messages = append(messages, domain.Message{Role: m.Role, Parts: m.Parts})
	}
	if len(messages) == 0 {
		return nil, domain.E(domain.KindValidation, "messages must not be empty")
	}

	result, err := provider.Stream(ctx, llm.Request{Messages: messages}, req.Model, fn)
	if err != nil {
		return nil, domain.Wrap(domain.KindGeneration, "completion failed", err)
	}
	return result, nil
}

// saveAssistantMessage records the completed turn: tool parts first, then
// a trailing text part when the engine produced text.
func (s *ChatService) saveAssistantMessage(ctx context.Context, threadID string, result *llm.Result) error {
	parts := assistantParts(result)
	if len(parts) == 0 {
		return nil
	}

	return s.messageRepo.Create(ctx, &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      domain.RoleAssistant,
		Parts:     parts,
		CreatedAt: time.Now(),
	})
}

func assistantParts(result *llm.Result) []domain.Part {
	parts := make([]domain.Part, 0, len(result.ToolCalls)+1)
	for _, tc := range result.ToolCalls {
		name := tc.Name
		if name == "" {
			name = "call"
		}
		parts = append(parts, domain.Part{
			Type:       "tool-" + name,
			ToolCallID: tc.ID,
			State:      tc.State,
			Input:      tc.Input,
			Output:     tc.Output,
		})
	}
	if result.Text != "" {
		parts = append(parts, domain.TextPart(result.Text))
	}
	return parts
}
