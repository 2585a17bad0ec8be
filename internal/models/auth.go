package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the access token payload issued by the identity service.
// The subject claim carries the user id.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated subject.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// CurrentUser is the session view returned to clients.
type CurrentUser struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Profile *Profile `json:"profile,omitempty"`
}
