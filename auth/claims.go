package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the decoded, verified view of a token. The claim set is
// closed: identity id, login key, role, and verification flag. Nothing in it
// is ever derived from client-supplied request data.
type AuthClaims interface {
	Subject() string
	UserID() string
	LoginKey() string
	Role() string
	IsVerified() bool
	TokenID() string
	HasRole(role UserRole) bool
	IsAtLeast(minRole UserRole) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	Email    string `json:"email,omitempty"`
	UserRole string `json:"role,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity id, falling back to the subject claim
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// LoginKey returns the email the identity authenticates with
func (c *JWTClaims) LoginKey() string {
	return c.Email
}

// Role returns the identity's role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// IsVerified reports the account verification flag captured at issuance
func (c *JWTClaims) IsVerified() bool {
	return c.Verified
}

// TokenID returns the jti claim used by the revocation denylist
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// HasRole checks if the identity has the exact role
func (c *JWTClaims) HasRole(role UserRole) bool {
	return UserRole(c.UserRole) == role
}

// IsAtLeast checks if the identity's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole UserRole) bool {
	return UserRole(c.UserRole).IsAtLeast(minRole)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// structurallyValid rejects decoded claims missing required fields. Signature
// and expiry are the parser's job; this is the final shape check.
func (c *JWTClaims) structurallyValid() bool {
	if c.UserID() == "" {
		return false
	}
	if _, ok := ParseRole(c.UserRole); !ok {
		return false
	}
	return true
}
