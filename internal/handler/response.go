package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

const maxBodyBytes = 1 << 20

var errInvalidJSON = apierror.Validation(apierror.CodeValidation, "Invalid JSON body")

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// responder translates errors into response bodies. Details are only
// exposed outside production.
type responder struct {
	exposeDetails bool
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{
		Code:  apierror.CodeInternal,
		Error: "Internal server error",
	}
	var details string

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Kind != apierror.KindInternal:
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Error = apiErr.Message
		body.Suggestions = apiErr.Suggestions
		details = apiErr.Details
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		body.Code = apierror.CodeRequestTimeout
		body.Error = "Request timed out"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Error = "User not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusBadRequest
		body.Code = apierror.CodeUserAlreadyExists
		body.Error = "User with this email or username already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = apierror.CodeInvalidCredentials
		body.Error = "Invalid credentials"
	case errors.Is(err, model.ErrInvalidToken):
		status = http.StatusForbidden
		body.Code = apierror.CodeInvalidToken
		body.Error = "Invalid or expired token"
	default:
		slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		details = err.Error()
		if apiErr != nil && apiErr.Err != nil {
			details = apiErr.Err.Error()
		}
	}

	if rs.exposeDetails {
		body.Details = details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON object into dst. An empty body leaves dst zero so
// the required-field checks produce the error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errInvalidJSON.Wrap(err)
}
