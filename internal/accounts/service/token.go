package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// TokenService issues stateless access tokens. There is no refresh or
// revocation; tokens simply expire after AccessTTL.
type TokenService struct {
	Signer    jwtx.Signer
	Issuer    string        // optional iss claim
	AccessTTL time.Duration // zero means jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) ttl() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

// Issue signs an access token for the account. For a fixed now the output
// is deterministic.
func (s *TokenService) Issue(accountID, email string, roles []string, now time.Time) (domain.AccessToken, error) {
	ttl := s.ttl()
	claims := jwtx.NewAccessClaims(accountID, email, roles, s.Issuer, ttl, now)

	signed, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("issue access token: %w", err)
	}

	return domain.AccessToken{
		Token:     signed,
		TokenType: domain.TokenTypeBearer,
		ExpiresIn: int64(ttl / time.Second),
	}, nil
}
