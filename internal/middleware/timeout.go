package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution. Handlers see the deadline through the
// request context; the client gets a 503 JSON body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.ErrorResponse{
		Error: "Request timed out",
		Code:  apierror.CodeRequestTimeout,
	})
	message := string(body)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
