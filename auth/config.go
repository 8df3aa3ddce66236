package auth

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Config holds auth options. Implemented by BaseConfig; kept as an interface
// so callers can source values from their own configuration layer.
type Config interface {
	GetAccessSigningKey() string
	GetRefreshSigningKey() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
	GetBcryptCost() int
}

const (
	// DefaultAccessTokenTTL mirrors the upstream API contract of hour-scoped
	// access tokens.
	DefaultAccessTokenTTL = time.Hour
	// DefaultRefreshTokenTTL keeps refresh credentials alive for a week.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	// DefaultContextKey is where the guard stores decoded claims.
	DefaultContextKey = "claims"
	// DefaultAuthScheme prefixes bearer tokens in the Authorization header.
	DefaultAuthScheme = "Bearer"
)

// BaseConfig is the env-driven configuration for the auth subsystem. Signing
// keys have no compiled-in default: a process without them refuses to start.
type BaseConfig struct {
	AccessSigningKey  string
	RefreshSigningKey string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Issuer            string
	Audience          []string
	ContextKey        string
	AuthScheme        string
	BcryptCost        int
}

// ConfigFromEnv loads configuration from LOKANTA_* environment variables and
// applies defaults for everything except the signing keys.
func ConfigFromEnv() (*BaseConfig, error) {
	cfg := &BaseConfig{
		AccessSigningKey:  os.Getenv("LOKANTA_ACCESS_SIGNING_KEY"),
		RefreshSigningKey: os.Getenv("LOKANTA_REFRESH_SIGNING_KEY"),
		Issuer:            os.Getenv("LOKANTA_TOKEN_ISSUER"),
		AccessTokenTTL:    DefaultAccessTokenTTL,
		RefreshTokenTTL:   DefaultRefreshTokenTTL,
		ContextKey:        DefaultContextKey,
		AuthScheme:        DefaultAuthScheme,
		BcryptCost:        DefaultBcryptCost,
	}

	if v := os.Getenv("LOKANTA_ACCESS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid LOKANTA_ACCESS_TOKEN_TTL")
		}
		cfg.AccessTokenTTL = ttl
	}

	if v := os.Getenv("LOKANTA_REFRESH_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid LOKANTA_REFRESH_TOKEN_TTL")
		}
		cfg.RefreshTokenTTL = ttl
	}

	if v := os.Getenv("LOKANTA_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid LOKANTA_BCRYPT_COST")
		}
		cfg.BcryptCost = cost
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the fail-fast startup contract: both signing keys must be
// present and distinct, and TTLs must be positive.
func (c *BaseConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.AccessSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.RefreshSigningKey, validation.Required, validation.Length(16, 0)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "auth signing keys must be configured").
			WithTextCode(TextCodeMissingSigningKey)
	}

	if c.AccessSigningKey == c.RefreshSigningKey {
		return errors.New("access and refresh signing keys must differ", errors.CategoryValidation).
			WithTextCode(TextCodeMissingSigningKey)
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive", errors.CategoryValidation)
	}

	return nil
}

func (c *BaseConfig) GetAccessSigningKey() string  { return c.AccessSigningKey }
func (c *BaseConfig) GetRefreshSigningKey() string { return c.RefreshSigningKey }

func (c *BaseConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return DefaultAccessTokenTTL
	}
	return c.AccessTokenTTL
}

func (c *BaseConfig) GetRefreshTokenTTL() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return DefaultRefreshTokenTTL
	}
	return c.RefreshTokenTTL
}

func (c *BaseConfig) GetIssuer() string     { return c.Issuer }
func (c *BaseConfig) GetAudience() []string { return c.Audience }

func (c *BaseConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

func (c *BaseConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return DefaultAuthScheme
	}
	return c.AuthScheme
}

func (c *BaseConfig) GetBcryptCost() int {
	if c.BcryptCost == 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

var _ Config = (*BaseConfig)(nil)
