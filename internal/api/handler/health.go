package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ocha-app/ocha/internal/api/response"
	"github.com/ocha-app/ocha/internal/repository"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	store *repository.Store
}

func NewHealthHandler(store *repository.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check answers GET /health. The probe is a real store round-trip, not
// just a ping; a failing database never fails the endpoint itself.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}

	count, err := h.store.Threads.CountByUser(ctx, "health-probe")
	if err != nil {
		body["database"] = "down"
	} else {
		body["database"] = "up"
		body["threadsCount"] = count
	}

	response.JSON(w, http.StatusOK, body)
}
