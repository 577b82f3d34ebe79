package handler

import (
	"net/http"

	"github.com/ocha-app/ocha/internal/api/response"
	"github.com/ocha-app/ocha/internal/llm"
)

// ListProviders returns the registered completion engines and their models.
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{
			"providers": router.GetProvidersInfo(),
			"default":   router.DefaultProvider(),
		})
	}
}
