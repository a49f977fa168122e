package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// UsersHandler handles the account management endpoints.
type UsersHandler struct {
	AccountService *service.AccountService
	Version        string
}

// HandleRegister handles POST /v1/users/register
//
//	@Summary		Register a new user
//	@Description	Creates a new account. Email must be unique, including among deactivated accounts.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	accountsdk.AccountResponse
//	@Failure		409		{object}	accountsdk.ErrorResponse	"DUPLICATE_EMAIL"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.AccountService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.FullName,
		Phone:       req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	slogx.FromContext(r.Context()).Info("account registered", "account_id", account.ID)
	httpx.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

// HandleList handles GET /v1/users
//
//	@Summary		List users
//	@Description	Returns a page of accounts, newest first. page_size is capped at 100.
//	@Tags			Users
//	@Produce		json
//	@Param			page		query		int	false	"Page number (1-based)"	default(1)
//	@Param			page_size	query		int	false	"Page size"				default(20)
//	@Success		200			{object}	accountsdk.PaginatedAccountsResponse
//	@Failure		422			{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		500			{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	page := queryInt(r, "page", 1, fields)
	pageSize := queryInt(r, "page_size", domain.DefaultPageSize, fields)
	if len(fields) > 0 {
		httpx.WriteFieldErrors(w, "Invalid query parameters", fields)
		return
	}

	p, err := h.AccountService.ListAccounts(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	data := make([]accountsdk.AccountResponse, 0, len(p.Items))
	for _, a := range p.Items {
		data = append(data, toAccountResponse(a))
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.PaginatedAccountsResponse{
		Data: data,
		Pagination: accountsdk.Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages(),
		},
		Meta: accountsdk.ResponseMeta{
			Service: ServiceName,
			Version: h.Version,
		},
	})
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary		Get user by ID
//	@Description	Returns a single account by UUID, active or not.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"Account ID (UUID)"
//	@Success		200	{object}	accountsdk.AccountResponse
//	@Failure		404	{object}	accountsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Failure		422	{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		500	{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	account, err := h.AccountService.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "User "+id.String()+" not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

// HandleUpdate handles PATCH /v1/users/{id}
//
//	@Summary		Update user profile
//	@Description	Partially updates the profile. Omitted fields are left unchanged.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Account ID (UUID)"
//	@Param			request	body		accountsdk.UpdateAccountRequest	true	"Fields to change"
//	@Success		200		{object}	accountsdk.AccountResponse
//	@Failure		404		{object}	accountsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		500		{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	var req accountsdk.UpdateAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.AccountService.UpdateAccount(r.Context(), id, domain.AccountPatch{
		DisplayName: req.FullName,
		Phone:       req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "User "+id.String()+" not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

// HandleDeactivate handles DELETE /v1/users/{id}
//
//	@Summary		Deactivate user
//	@Description	Soft-deletes the account by marking it inactive. Repeating the call succeeds.
//	@Tags			Users
//	@Param			id	path	string	true	"Account ID (UUID)"
//	@Success		204	"Account deactivated"
//	@Failure		404	{object}	accountsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Failure		422	{object}	accountsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		500	{object}	accountsdk.ErrorResponse	"INTERNAL_ERROR"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	if err := h.AccountService.DeactivateAccount(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "User "+id.String()+" not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toAccountResponse(a domain.AccountView) accountsdk.AccountResponse {
	return accountsdk.AccountResponse{
		ID:         a.ID.String(),
		Email:      a.Email,
		FullName:   a.DisplayName,
		Phone:      a.Phone,
		IsActive:   a.IsActive,
		IsVerified: a.IsVerified,
		Role:       a.Role,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// queryInt reads an optional integer query parameter, recording a field
// error when it is present but not a number.
func queryInt(r *http.Request, name string, def int, fields map[string]string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fields[name] = "must be an integer"
		return def
	}
	return v
}
