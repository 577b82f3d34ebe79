package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ocha-app/ocha/internal/api/handler"
	customMiddleware "github.com/ocha-app/ocha/internal/api/middleware"
	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/llm"
	"github.com/ocha-app/ocha/internal/repository"
	"github.com/ocha-app/ocha/internal/security"
	"github.com/ocha-app/ocha/internal/service"
)

// scriptedProvider replays fixed chunks as an llm.Provider.
type scriptedProvider struct {
	chunks []llm.Chunk
	text   string
	err    error
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) AvailableModels() []string { return []string{"scripted-model"} }
func (p *scriptedProvider) DefaultModel() string      { return "scripted-model" }
func (p *scriptedProvider) IsConfigured() bool        { return true }

func (p *scriptedProvider) Stream(_ context.Context, _ llm.Request, model string, fn llm.StreamFunc) (*llm.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	for _, chunk := range p.chunks {
		if err := fn(chunk); err != nil {
			return nil, err
		}
	}
	return &llm.Result{Text: p.text, Model: model}, nil
}

type chatAPI struct {
	router     http.Handler
	jwtManager *security.JWTManager
	store      *repository.Store
}

func newChatAPI(t *testing.T, provider llm.Provider) *chatAPI {
	t.Helper()

	store, err := repository.Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	router := llm.NewRouter("scripted")
	router.RegisterProvider(provider)

	chatService := service.NewChatService(store.Threads, store.Messages, router, config.ChatConfig{})
	chatHandler := handler.NewChatHandler(chatService)
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/api/ai/chat", chatHandler.Chat)
	})

	return &chatAPI{router: r, jwtManager: jwtManager, store: store}
}

func (a *chatAPI) stream(t *testing.T, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(string(payload)))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// parseSSE collects the data payloads of an event stream body.
func parseSSE(t *testing.T, body string) []string {
	t.Helper()

	var events []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			events = append(events, strings.TrimPrefix(line, "data: "))
		}
	}
	return events
}

func TestChatHandler_StreamsTurn(t *testing.T) {
	user := domain.User{ID: "user-1", Email: "alice@example.com"}
	api := newChatAPI(t, &scriptedProvider{
		chunks: []llm.Chunk{
			{Type: llm.ChunkTextDelta, Delta: "Hel"},
			{Type: llm.ChunkTextDelta, Delta: "lo"},
		},
		text: "Hello",
	})
	token, _ := api.jwtManager.GenerateAccessToken(user)

	thread := &domain.Thread{
		ID: "thread-1", UserID: user.ID, Title: "Chat",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := api.store.Threads.Create(context.Background(), thread); err != nil {
		t.Fatalf("failed to seed thread: %v", err)
	}

	rec := api.stream(t, token, map[string]string{"threadId": "thread-1", "content": "Hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected event stream content type, got %q", ct)
	}

	events := parseSSE(t, rec.Body.String())
	if len(events) < 4 {
		t.Fatalf("expected delta, finish and done events, got %v", events)
	}
	if events[len(events)-1] != "[DONE]" {
		t.Errorf("expected trailing [DONE], got %q", events[len(events)-1])
	}

	var text string
	sawFinish := false
	for _, e := range events[:len(events)-1] {
		var chunk map[string]any
		if err := json.Unmarshal([]byte(e), &chunk); err != nil {
			t.Fatalf("event is not JSON: %q", e)
		}
		switch chunk["type"] {
		case string(llm.ChunkTextDelta):
			text += chunk["delta"].(string)
		case string(llm.ChunkFinish):
			sawFinish = true
		}
	}
	if text != "Hello" {
		t.Errorf("expected streamed text %q, got %q", "Hello", text)
	}
	if !sawFinish {
		t.Error("expected a finish event")
	}

	// Both turns were persisted.
	messages, err := api.store.Messages.ListByThread(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleUser || messages[1].Role != domain.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", messages[0].Role, messages[1].Role)
	}
}

func TestChatHandler_UnknownThread(t *testing.T) {
	api := newChatAPI(t, &scriptedProvider{text: "unused"})
	token, _ := api.jwtManager.GenerateAccessToken(domain.User{ID: "user-1", Email: "a@example.com"})

	rec := api.stream(t, token, map[string]string{"threadId": "missing", "content": "Hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestChatHandler_EngineFailureBeforeFirstByte(t *testing.T) {
	api := newChatAPI(t, &scriptedProvider{err: errors.New("upstream 500")})
	token, _ := api.jwtManager.GenerateAccessToken(domain.User{ID: "user-1", Email: "a@example.com"})

	thread := &domain.Thread{
		ID: "thread-1", UserID: "user-1", Title: "Chat",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := api.store.Threads.Create(context.Background(), thread); err != nil {
		t.Fatalf("failed to seed thread: %v", err)
	}

	rec := api.stream(t, token, map[string]string{"threadId": "thread-1", "content": "Hi"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestChatHandler_StatelessMessages(t *testing.T) {
	api := newChatAPI(t, &scriptedProvider{
		chunks: []llm.Chunk{{Type: llm.ChunkTextDelta, Delta: "ok"}},
		text:   "ok",
	})
	token, _ := api.jwtManager.GenerateAccessToken(domain.User{ID: "user-1", Email: "a@example.com"})

	rec := api.stream(t, token, map[string]any{
		"messages": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"type": "text", "text": "Hi"}}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	events := parseSSE(t, rec.Body.String())
	if len(events) == 0 || events[len(events)-1] != "[DONE]" {
		t.Errorf("expected a terminated stream, got %v", events)
	}
}
