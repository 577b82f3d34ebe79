package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Provider implements llm.Provider for Gemini.
type Provider struct {
	apiKey string
	model  string
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Stream sends the conversation to Gemini and forwards text deltas to fn.
func (p *Provider) Stream(ctx context.Context, req llm.Request, model string, fn llm.StreamFunc) (*llm.Result, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	turns := llm.ModelTurns(req.Messages)
	if len(turns) == 0 {
		return nil, errors.New("empty conversation context")
	}

	generativeModel := client.GenerativeModel(model)
	chat := generativeModel.StartChat()
	chat.History = toHistory(turns[:len(turns)-1])
	last := domain.FlattenParts(turns[len(turns)-1].Parts)

	start := time.Now()
	iter := chat.SendMessageStream(ctx, genai.Text(last))

	result := &llm.Result{Model: model}
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}

		if resp.UsageMetadata != nil {
			result.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			text, ok := part.(genai.Text)
			if !ok || text == "" {
				continue
			}
			result.Text += string(text)
			if err := fn(llm.Chunk{Type: llm.ChunkTextDelta, Delta: string(text)}); err != nil {
				return nil, fmt.Errorf("stream consumer aborted: %w", err)
			}
		}
	}

	result.LatencyMs = time.Since(start).Milliseconds()
	return result, nil
}

// toHistory maps stored turns onto Gemini chat roles. Gemini only knows
// "user" and "model"; system turns are replayed as user text.
func toHistory(turns []domain.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(domain.FlattenParts(m.Parts))},
		})
	}
	return history
}
