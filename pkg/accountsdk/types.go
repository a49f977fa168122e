package accountsdk

import "time"

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest is the body of POST /v1/users/register.
type RegisterRequest struct {
	// Email must be unique across all accounts, active or not.
	Email string `json:"email" example:"jane@example.com"`

	// Password is at least 8 characters.
	Password string `json:"password" example:"s3cur3P@ssw0rd"`

	// FullName is the display name, 2 to 255 characters.
	FullName string `json:"full_name" example:"Jane Doe"`

	// Phone is optional.
	Phone *string `json:"phone,omitempty" example:"+919876543210"`
}

// UpdateAccountRequest is the body of PATCH /v1/users/{id}. Omitted fields
// are left unchanged.
type UpdateAccountRequest struct {
	FullName *string `json:"full_name,omitempty" example:"Jane Smith"`
	Phone    *string `json:"phone,omitempty" example:"+919876543210"`
}

// LoginRequest is the body of POST /v1/auth/token.
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"s3cur3P@ssw0rd"`
}

// ============================================================================
// Responses
// ============================================================================

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID         string    `json:"id" example:"6f1c0e2a-8f0d-4a53-9f7e-3c1a2b4d5e6f"`
	Email      string    `json:"email" example:"jane@example.com"`
	FullName   string    `json:"full_name" example:"Jane Doe"`
	Phone      *string   `json:"phone"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	Role       string    `json:"role" example:"customer"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in" example:"3600"`
}

// Pagination describes the page returned by GET /v1/users.
type Pagination struct {
	Page       int `json:"page" example:"1"`
	PageSize   int `json:"page_size" example:"20"`
	Total      int `json:"total" example:"42"`
	TotalPages int `json:"total_pages" example:"3"`
}

// ResponseMeta identifies the service that produced a listing.
type ResponseMeta struct {
	Service string `json:"service" example:"user-service"`
	Version string `json:"version" example:"1.0.0"`
}

// PaginatedAccountsResponse is the body of GET /v1/users.
type PaginatedAccountsResponse struct {
	Data       []AccountResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Meta       ResponseMeta      `json:"meta"`
}

// HealthResponse is returned by /health/live and /health/ready.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"user-service"`
	Version string `json:"version" example:"1.0.0"`

	// Uptime is the process uptime (e.g. "1h23m45s").
	Uptime string `json:"uptime,omitempty"`

	// Checks is only set by the readiness probe.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// ErrorResponse is the error envelope written by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine readable code and a message. Fields is
// only set for VALIDATION_ERROR.
type ErrorDetail struct {
	Code    string            `json:"code" example:"USER_NOT_FOUND"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
