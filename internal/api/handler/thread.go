package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ocha-app/ocha/internal/api/middleware"
	"github.com/ocha-app/ocha/internal/api/response"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/service"
)

// ThreadHandler serves the thread CRUD routes.
type ThreadHandler struct {
	threadService *service.ThreadService
}

// NewThreadHandler creates a new thread handler
func NewThreadHandler(threadService *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

// List returns the caller's threads.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	threads, err := h.threadService.List(r.Context(), user)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if threads == nil {
		threads = []domain.Thread{}
	}

	response.JSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// Create starts a new thread.
func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.CreateThreadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	thread, err := h.threadService.Create(r.Context(), user, req.Title)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{"thread": thread})
}

// Get returns a thread with its messages.
func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	detail, err := h.threadService.Get(r.Context(), user, chi.URLParam(r, "threadID"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, detail)
}

// Update renames a thread.
func (h *ThreadHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.UpdateThreadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	thread, err := h.threadService.Rename(r.Context(), user, chi.URLParam(r, "threadID"), req.Title)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"thread": thread})
}

// AddMessage appends a message to a thread.
func (h *ThreadHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.AddMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.threadService.AddMessage(r.Context(), user, chi.URLParam(r, "threadID"), req.Role, req.Content)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{"message": message})
}

// Delete removes a thread and its messages.
func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.threadService.Delete(r.Context(), user, chi.URLParam(r, "threadID")); err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Thread deleted successfully"})
}
