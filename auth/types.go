package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the minimal logging surface the auth package needs. Calls carry a
// message followed by alternating key-value pairs. The default implementation
// writes to stdout; cmd/server plugs in a zerolog adapter.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
}

// Identity holds the attributes of an authenticated identity. These are the
// only values that ever make it into token claims.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
	Verified() bool
}

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*TokenPair, Identity, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error)
}

// TokenService issues and validates signed tokens.
type TokenService interface {
	IssueAccessToken(identity Identity) (string, error)
	IssueRefreshToken(identity Identity) (string, error)
	Validate(kind TokenKind, tokenString string) (AuthClaims, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific issuing implementation. The guard middleware consumes this.
type TokenValidator interface {
	Validate(kind TokenKind, tokenString string) (AuthClaims, error)
}

// IdentityProvider is the credential store boundary: verify a credential pair
// or look an identity up by its stable identifier.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Denylist tracks revoked token ids until their natural expiry. A nil
// Denylist disables revocation: tokens then stay valid for their full TTL.
type Denylist interface {
	Revoke(jti string, until time.Time)
	IsRevoked(jti string) bool
}

type defLogger struct{}

func (d defLogger) Error(message string, args ...any) { fmt.Println(logLine("ERR", message, args)) }
func (d defLogger) Warn(message string, args ...any)  { fmt.Println(logLine("WRN", message, args)) }
func (d defLogger) Info(message string, args ...any)  { fmt.Println(logLine("INF", message, args)) }
func (d defLogger) Debug(message string, args ...any) { fmt.Println(logLine("DBG", message, args)) }

// logLine renders the message and its key-value pairs; a trailing odd
// argument is appended as-is.
func logLine(level, message string, args []any) string {
	var b strings.Builder
	b.WriteString("[" + level + "] AUTH " + message)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}
