package handler

import (
	"net/http"

	"github.com/ocha-app/ocha/internal/api/middleware"
	"github.com/ocha-app/ocha/internal/api/response"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/service"
)

// AuthHandler serves the sign-in exchange and token verification routes.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Google exchanges a Google ID token for an API access token.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleAuthRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.ExchangeGoogleCredential(r.Context(), req.Credential)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Verify confirms the bearer token already validated by the auth
// middleware and echoes the identity it carries.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
