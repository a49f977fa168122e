package domain

// TokenTypeBearer is the only token type we issue.
const TokenTypeBearer = "bearer"

// AccessToken is what a successful login returns.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int64 // seconds until expiry
}
