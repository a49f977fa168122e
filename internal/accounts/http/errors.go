package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/google/uuid"
)

// writeServiceError maps a service failure onto the error envelope.
// Anything that is not a domain error is logged and reported as a 500
// without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusConflict, accountsdk.ErrorCodeDuplicateEmail,
			"Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidCredentials,
			"Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, accountsdk.ErrorCodeUserNotFound, notFoundMsg)
	default:
		slogx.FromContext(r.Context()).Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal,
			"An internal error occurred")
	}
}

// decodeAndValidate reads the JSON body into dst and runs its Validate
// method. On failure the 422 response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteFieldErrors(w, "Request body is invalid", map[string]string{"body": err.Error()})
		return false
	}
	if err := dst.Validate(); err != nil {
		httpx.WriteFieldErrors(w, "Request validation failed", accountsdk.FieldErrors(err))
		return false
	}
	return true
}

// pathAccountID parses the {id} path segment. On failure the 422 response
// has already been written.
func pathAccountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteFieldErrors(w, "Invalid account id", map[string]string{"id": "must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
