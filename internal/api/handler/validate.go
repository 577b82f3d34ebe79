package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ocha-app/ocha/internal/api/response"
)

var validate = validator.New()

// decodeAndValidate parses the request body into v and checks its
// validation tags, writing the 400 itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]map[string]string, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, map[string]string{
					"field": fe.Field(),
					"rule":  fe.Tag(),
				})
			}
			response.ValidationError(w, "invalid request body", issues)
			return false
		}
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
