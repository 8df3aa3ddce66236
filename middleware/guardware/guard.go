// Package guardware provides the request authorization gate: it extracts a
// bearer token, verifies it, attaches the decoded claims to the request
// context, and evaluates the route's declarative access policy. It never
// touches the credential store.
package guardware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/emirkorkmazz/lokanta-api/auth"
)

// Config holds the guard configuration for one route group.
type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool

	// TokenValidator is required for token validation
	TokenValidator auth.TokenValidator

	// Policy is the declarative access rule for the guarded routes. The
	// zero value behaves like auth.AnyAuthenticated.
	Policy auth.AccessPolicy

	// ContextKey is the fiber locals key for decoded claims.
	// Defaults to "claims".
	ContextKey string

	// AuthScheme is the expected Authorization header scheme.
	// Defaults to "Bearer".
	AuthScheme string

	// ErrorHandler renders guard failures. The default writes the JSON
	// envelope {status:false, message} with the mapped status code.
	ErrorHandler fiber.ErrorHandler
}

// New returns a fiber handler enforcing the given configuration.
func New(config ...Config) fiber.Handler {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("guardware: TokenValidator is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = auth.DefaultContextKey
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = auth.DefaultAuthScheme
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		token, ok := TokenFromHeader(c, cfg.AuthScheme)
		if !ok {
			if !cfg.Policy.RequiresToken() {
				return c.Next()
			}
			return cfg.ErrorHandler(c, auth.ErrMissingToken)
		}

		claims, err := cfg.TokenValidator.Validate(auth.AccessToken, token)
		if err != nil {
			if !cfg.Policy.RequiresToken() {
				// optional auth: an unusable token degrades to anonymous
				return c.Next()
			}
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)
		c.SetUserContext(auth.WithClaimsContext(c.UserContext(), claims))

		if err := cfg.Policy.Allows(c.UserContext(), claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		return c.Next()
	}
}

// Protected is shorthand for a guard with an explicit policy.
func Protected(validator auth.TokenValidator, policy auth.AccessPolicy) fiber.Handler {
	return New(Config{
		TokenValidator: validator,
		Policy:         policy,
	})
}

// ClaimsFromCtx returns the verified claims a previous guard attached.
func ClaimsFromCtx(c *fiber.Ctx, key string) (auth.AuthClaims, bool) {
	if key == "" {
		key = auth.DefaultContextKey
	}
	claims, ok := c.Locals(key).(auth.AuthClaims)
	return claims, ok
}

// TokenFromHeader extracts the bearer token from the Authorization header.
// The scheme prefix is matched case-insensitively; a header under any other
// scheme yields no token.
func TokenFromHeader(c *fiber.Ctx, scheme string) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	if scheme == "" {
		return header, true
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusForbidden
	message := "authorization failed: invalid token"

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.Code > 0 {
			status = richErr.Code
		}
		message = richErr.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  false,
		"message": message,
	})
}
