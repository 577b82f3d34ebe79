package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageRole represents the author of a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ValidRole reports whether r is one of the three persisted roles.
func ValidRole(r MessageRole) bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// PartTypeText is the tag of plain text parts. Every other tag is a
// tool-specific identifier such as "tool-web_search".
const PartTypeText = "text"

// ToolState is the lifecycle state of a tool part.
type ToolState string

const (
	ToolStateCall            ToolState = "call"
	ToolStateOutputAvailable ToolState = "output-available"
	ToolStatePartial         ToolState = "partial"
	ToolStateError           ToolState = "error"
)

// Part is one typed fragment of a message: either a text segment or a tool
// invocation record. The union is closed and validated before persistence.
type Part struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	State      ToolState       `json:"state,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
}

// IsText reports whether the part is a plain text segment.
func (p Part) IsText() bool {
	return p.Type == PartTypeText
}

// Validate enforces the tagged-union invariants.
func (p Part) Validate() error {
	if p.Type == "" {
		return E(KindValidation, "part type is required")
	}
	if p.IsText() {
		if p.ToolCallID != "" || p.State != "" {
			return E(KindValidation, "text part must not carry tool fields")
		}
		return nil
	}
	if p.ToolCallID == "" {
		return E(KindValidation, fmt.Sprintf("tool part %q requires toolCallId", p.Type))
	}
	switch p.State {
	case ToolStateCall, ToolStateOutputAvailable, ToolStatePartial, ToolStateError:
	default:
		return E(KindValidation, fmt.Sprintf("invalid tool part state %q", p.State))
	}
	if len(p.Output) > 0 && p.State != ToolStateOutputAvailable {
		return E(KindValidation, "tool part output requires state output-available")
	}
	return nil
}

// TextPart builds a plain text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// ValidateParts checks every part of a message.
func ValidateParts(parts []Part) error {
	if len(parts) == 0 {
		return E(KindValidation, "message requires at least one part")
	}
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FlattenParts concatenates the text-typed parts of a message. Tool parts
// carry no text and are skipped.
func FlattenParts(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.IsText() {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Message is one immutable turn in a thread.
type Message struct {
	ID        string      `json:"id"`
	ThreadID  string      `json:"thread_id"`
	Role      MessageRole `json:"role"`
	Parts     []Part      `json:"parts"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage.
type MessageRepository interface {
	// Create inserts the message and bumps the parent thread's updated_at
	// as part of the same logical operation. The thread must exist.
	Create(ctx context.Context, message *Message) error
	// ListByThread orders by created_at ascending.
	ListByThread(ctx context.Context, threadID string) ([]Message, error)
	// ListRecent returns the most recent limit messages in chronological order.
	ListRecent(ctx context.Context, threadID string, limit int) ([]Message, error)
}

// AddMessageRequest is the POST /api/threads/{threadID}/messages payload.
type AddMessageRequest struct {
	Role    MessageRole `json:"role" validate:"required,oneof=user assistant system"`
	Content string      `json:"content" validate:"required"`
}

// ChatMessage is one turn of the legacy stateless chat payload.
type ChatMessage struct {
	Role  MessageRole `json:"role" validate:"required,oneof=user assistant system"`
	Parts []Part      `json:"parts"`
}

// ChatRequest is the POST /api/ai/chat payload. Either ThreadID+Content
// (persisted turn) or the legacy Messages shape (stateless) must be set.
type ChatRequest struct {
	ThreadID string        `json:"threadId"`
	Content  string        `json:"content"`
	Provider string        `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}
