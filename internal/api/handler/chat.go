package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ocha-app/ocha/internal/api/middleware"
	"github.com/ocha-app/ocha/internal/api/response"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
	"github.com/ocha-app/ocha/internal/service"
)

// ChatHandler serves the streaming chat route.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat executes one chat turn and streams the engine's output back as
// server-sent events. Headers are deferred until the first chunk so
// pre-generation failures still map to proper status codes.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	emit := func(chunk llm.Chunk) error {
		if !started {
			writeStreamHeaders(w)
			started = true
		}
		payload, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	result, err := h.chatService.StreamTurn(r.Context(), user, req, emit)
	if err != nil {
		if !started {
			response.FromError(w, err)
			return
		}
		// The stream is already underway; all we can do is signal failure
		// in-band and terminate.
		fmt.Fprintf(w, "data: %s\n\n", `{"type":"error"}`)
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
		return
	}

	if !started {
		writeStreamHeaders(w)
	}
	finish, _ := json.Marshal(map[string]any{
		"type":       llm.ChunkFinish,
		"model":      result.Model,
		"tokensUsed": result.TokensUsed,
		"latencyMs":  result.LatencyMs,
	})
	fmt.Fprintf(w, "data: %s\n\n", finish)
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}
