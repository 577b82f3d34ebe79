package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
	openai "github.com/sashabaranov/go-openai"
)

// Provider implements llm.Provider for the OpenAI chat completion API.
type Provider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(apiKey),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gpt-4o-mini"
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type toolCallAccumulator struct {
	index     int
	id        string
	name      string
	arguments string
}

// Stream sends the conversation to OpenAI and forwards completion deltas
// to fn as they arrive.
func (p *Provider) Stream(ctx context.Context, req llm.Request, model string, fn llm.StreamFunc) (*llm.Result, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("openai provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(req.Messages),
		Stream:   true,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
	}

	start := time.Now()
	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	result := &llm.Result{Model: model}
	pending := map[int]*toolCallAccumulator{}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("completion stream error: %w", err)
		}

		if resp.Usage != nil {
			result.TokensUsed = resp.Usage.TotalTokens
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta
		if delta.Content != "" {
			result.Text += delta.Content
			if err := fn(llm.Chunk{Type: llm.ChunkTextDelta, Delta: delta.Content}); err != nil {
				return nil, fmt.Errorf("stream consumer aborted: %w", err)
			}
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			acc, ok := pending[idx]
			if !ok {
				acc = &toolCallAccumulator{index: idx}
				pending[idx] = acc
			}
			if tc.ID != "" {
				acc.id = tc.ID
			}
			if tc.Function.Name != "" {
				acc.name = tc.Function.Name
			}
			acc.arguments += tc.Function.Arguments
		}
	}

	for _, acc := range sortedAccumulators(pending) {
		call := llm.ToolCall{
			ID:    acc.id,
			Name:  acc.name,
			State: domain.ToolStateCall,
			Input: json.RawMessage(acc.arguments),
		}
		result.ToolCalls = append(result.ToolCalls, call)
		if err := fn(llm.Chunk{Type: llm.ChunkToolCall, ToolCall: &call}); err != nil {
			return nil, fmt.Errorf("stream consumer aborted: %w", err)
		}
	}

	result.LatencyMs = time.Since(start).Milliseconds()
	return result, nil
}

func sortedAccumulators(pending map[int]*toolCallAccumulator) []*toolCallAccumulator {
	accs := make([]*toolCallAccumulator, 0, len(pending))
	for _, acc := range pending {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].index < accs[j].index })
	return accs
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	turns := llm.ModelTurns(messages)
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, m := range turns {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: domain.FlattenParts(m.Parts),
		})
	}
	return out
}
