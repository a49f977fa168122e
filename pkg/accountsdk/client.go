package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a client for the accounts service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// ValidateRequests runs the request Validate methods before sending, so
	// invalid input fails without a round trip. Default: true
	ValidateRequests bool
}

// NewClient creates a new accounts service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		ValidateRequests: true,
	}
}

// validate turns a local validation failure into the same *APIError the
// service would have returned.
func (c *Client) validate(v interface{ Validate() error }) error {
	if !c.ValidateRequests {
		return nil
	}
	if err := v.Validate(); err != nil {
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       ErrorCodeValidation,
			Message:    "request validation failed",
			Fields:     FieldErrors(err),
		}
	}
	return nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AccountResponse, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/users/register", req)
	if err != nil {
		return nil, err
	}

	var account AccountResponse
	if err := decodeJSON(resp, &account, http.StatusCreated); err != nil {
		return nil, err
	}
	return &account, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/token", req)
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := decodeJSON(resp, &token, http.StatusOK); err != nil {
		return nil, err
	}
	return &token, nil
}

// GetAccount fetches an account by id.
func (c *Client) GetAccount(ctx context.Context, id string) (*AccountResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var account AccountResponse
	if err := decodeJSON(resp, &account, http.StatusOK); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts fetches one page of accounts, newest first. Zero values use
// the service defaults.
func (c *Client) ListAccounts(ctx context.Context, page, pageSize int) (*PaginatedAccountsResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	path := "/v1/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list PaginatedAccountsResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateAccount changes the provided profile fields.
func (c *Client) UpdateAccount(ctx context.Context, id string, req UpdateAccountRequest) (*AccountResponse, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	resp, err := c.doJSON(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var account AccountResponse
	if err := decodeJSON(resp, &account, http.StatusOK); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeactivateAccount soft-deletes an account. Deactivating an inactive
// account succeeds.
func (c *Client) DeactivateAccount(ctx context.Context, id string) error {
	resp, err := c.doJSON(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Liveness checks if the service is alive.
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/health/live")
}

// Readiness checks if the service can serve traffic.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/health/ready")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
