package types

import "github.com/golang-jwt/jwt/v5"

// TokenClaims represents the claims of a bearer token accepted by write routes
type TokenClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
}

// Principal returns the identity used for rate limiting and logging
func (c *TokenClaims) Principal() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.Subject
}
