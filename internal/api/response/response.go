package response

import (
	"encoding/json"
	"net/http"

	"github.com/ocha-app/ocha/internal/domain"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ValidationError writes a 400 with a structured issue list.
func ValidationError(w http.ResponseWriter, message string, issues any) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":   message,
		"details": issues,
	})
}

// FromError performs the single translation from error kinds to HTTP
// status codes. Unclassified errors become a generic 500 so internals
// never leak to callers.
func FromError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindAuthentication:
		Error(w, http.StatusUnauthorized, err.Error())
	case domain.KindAuthorization:
		Error(w, http.StatusForbidden, err.Error())
	case domain.KindValidation:
		Error(w, http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		Error(w, http.StatusNotFound, err.Error())
	case domain.KindGeneration, domain.KindStorage, domain.KindConfiguration:
		Error(w, http.StatusInternalServerError, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
