package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type TokenHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP exchanges email and password for an access token.
//
//	@Summary		Obtain access token
//	@Description	Authenticate with email and password to receive a JWT access token.
//	@Description	Unknown email, wrong password and deactivated accounts all fail with INVALID_CREDENTIALS.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	accountsdk.TokenResponse
//	@Failure		401		{object}	accountsdk.ErrorResponse	"INVALID_CREDENTIALS"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tok, err := h.AccountService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
		ExpiresIn:   tok.ExpiresIn,
	})
}
