package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenKind selects which signing key and TTL a token is issued and
// validated under. Access and refresh keys are distinct so a leaked refresh
// token can never replay as an access token, or vice versa.
type TokenKind string

const (
	// AccessToken is the short lived bearer credential
	AccessToken TokenKind = "access"
	// RefreshToken is the long lived credential used only to mint new
	// access tokens
	RefreshToken TokenKind = "refresh"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	denylist   Denylist
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption configures the token service.
type TokenServiceOption func(*TokenServiceImpl)

// WithDenylist makes validation consult a revocation denylist.
func WithDenylist(d Denylist) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.denylist = d
	}
}

// WithClock overrides the issuance clock, used by expiry boundary tests.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger, opts ...TokenServiceOption) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}

	ts := &TokenServiceImpl{
		accessKey:  []byte(cfg.GetAccessSigningKey()),
		refreshKey: []byte(cfg.GetRefreshSigningKey()),
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssueAccessToken mints a short lived token carrying the identity claims.
func (ts *TokenServiceImpl) IssueAccessToken(identity Identity) (string, error) {
	return ts.issue(AccessToken, identity)
}

// IssueRefreshToken mints a long lived token with the same claim shape.
func (ts *TokenServiceImpl) IssueRefreshToken(identity Identity) (string, error) {
	return ts.issue(RefreshToken, identity)
}

func (ts *TokenServiceImpl) issue(kind TokenKind, identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audienceCopy(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl(kind))),
			ID:        uuid.NewString(),
		},
		UID:      identity.ID(),
		Email:    identity.Email(),
		UserRole: identity.Role(),
		Verified: identity.Verified(),
	}

	return ts.SignClaims(kind, claims)
}

// SignClaims signs the given claims using the key for the token kind.
func (ts *TokenServiceImpl) SignClaims(kind TokenKind, claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.key(kind))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Checks run in order: signature, expiry, claim structure, then denylist.
// No database lookup happens here; a token stays valid for its full lifetime
// even if the underlying identity changed in the interim.
func (ts *TokenServiceImpl) Validate(kind TokenKind, tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.key(kind), nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenForged
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode).
				WithCode(ErrTokenMalformed.Code)
		}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if !claims.structurallyValid() {
		ts.logger.Error("TokenService validate rejected structurally invalid claims", "uid", claims.UID)
		return nil, ErrTokenMalformed
	}

	if ts.denylist != nil && ts.denylist.IsRevoked(claims.TokenID()) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func (ts *TokenServiceImpl) key(kind TokenKind) []byte {
	if kind == RefreshToken {
		return ts.refreshKey
	}
	return ts.accessKey
}

func (ts *TokenServiceImpl) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return ts.refreshTTL
	}
	return ts.accessTTL
}

func (ts *TokenServiceImpl) audienceCopy() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}

var _ TokenService = (*TokenServiceImpl)(nil)
var _ TokenValidator = (*TokenServiceImpl)(nil)
