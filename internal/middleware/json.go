package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

func writeAPIError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = jsonEncode(w, model.ErrorResponse{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}
