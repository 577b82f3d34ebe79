package llm

import (
	"context"
	"encoding/json"

	"github.com/ocha-app/ocha/internal/domain"
)

// Request carries the ordered conversation context for one completion.
type Request struct {
	Messages []domain.Message
}

// ToolCall records one tool invocation reported by the engine.
type ToolCall struct {
	ID     string
	Name   string
	State  domain.ToolState
	Input  json.RawMessage
	Output json.RawMessage
}

// Chunk types emitted while streaming.
const (
	ChunkTextDelta = "text-delta"
	ChunkToolCall  = "tool-call"
	ChunkFinish    = "finish"
)

// Chunk is one streamed unit of engine output.
type Chunk struct {
	Type     string    `json:"type"`
	Delta    string    `json:"delta,omitempty"`
	ToolCall *ToolCall `json:"toolCall,omitempty"`
}

// Result aggregates the output once the stream completes.
type Result struct {
	Text       string
	ToolCalls  []ToolCall
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// StreamFunc receives chunks as the engine produces them. Returning an
// error aborts the stream.
type StreamFunc func(Chunk) error

// Provider defines the interface for completion engines.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Stream generates a completion for the conversation, invoking fn for
	// every chunk, and returns the aggregate result when generation ends.
	Stream(ctx context.Context, req Request, model string, fn StreamFunc) (*Result, error)
}

// ModelTurns flattens each message's text parts into one model turn,
// dropping turns with no text. Tool parts carry no text.
func ModelTurns(messages []domain.Message) []domain.Message {
	turns := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		text := domain.FlattenParts(m.Parts)
		if text == "" {
			continue
		}
		turns = append(turns, domain.Message{
			ID:        m.ID,
			ThreadID:  m.ThreadID,
			Role:      m.Role,
			Parts:     []domain.Part{domain.TextPart(text)},
			CreatedAt: m.CreatedAt,
		})
	}
	return turns
}
