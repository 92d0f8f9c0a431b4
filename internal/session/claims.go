package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of a bearer token shown to the user. Nothing here is verified.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims decodes the registered claims of a JWT without verifying the signature or expiry.
// Opaque (non-JWT) tokens yield ok=false.
func Claims(token string) (TokenClaims, bool) {
	if token == "" {
		return TokenClaims{}, false
	}
	var rc jwt.RegisteredClaims
	_, _, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(token, &rc)
	if err != nil {
		return TokenClaims{}, false
	}
	var out TokenClaims
	out.Subject = rc.Subject
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, true
}
