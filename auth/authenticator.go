package auth

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther implements the credential authentication lifecycle: login mints an
// access+refresh pair, refresh exchanges a valid refresh token for a fresh
// access token, logout revokes the presented token.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	denylist     Denylist
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokenService TokenService) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithDenylist enables logout revocation.
func (s *Auther) WithDenylist(d Denylist) *Auther {
	s.denylist = d
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credential pair and mints a token pair. Unknown
// identifiers and bad passwords come back as the same ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Info("Login verify identity failed", "identifier", identifier)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
		})
		return nil, nil, ErrInvalidCredentials
	}

	access, err := s.tokenService.IssueAccessToken(identity)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	refresh, err := s.tokenService.IssueRefreshToken(identity)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue refresh token")
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, identity, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// identity is always rehydrated from the credential store so role changes and
// deletions take effect at the refresh boundary rather than riding out the
// refresh TTL on stale claims.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokenService.Validate(RefreshToken, refreshToken)
	if err != nil {
		s.logger.Info("Refresh token validation failed", "error", err)
		s.emitAuthEvent(ctx, ActivityEventRefreshFailure, "", map[string]any{
			"error": err.Error(),
		})
		return "", ErrRefreshTokenInvalid
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) || isRecordNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventRefreshFailure, claims.UserID(), nil)
			return "", ErrIdentityNotFound
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to rehydrate identity during refresh")
	}

	access, err := s.tokenService.IssueAccessToken(identity)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	s.emitAuthEvent(ctx, ActivityEventRefreshSuccess, identity.ID(), nil)

	return access, nil
}

// Logout puts the presented access token on the denylist until its natural
// expiry. Without a denylist this is a no-op on the server side; the client
// simply discards its tokens.
func (s *Auther) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokenService.Validate(AccessToken, accessToken)
	if err != nil {
		return err
	}

	if s.denylist != nil && claims.TokenID() != "" {
		until := claims.Expires()
		if until.IsZero() {
			until = time.Now().Add(DefaultAccessTokenTTL)
		}
		s.denylist.Revoke(claims.TokenID(), until)
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, claims.UserID(), nil)

	return nil
}

// IdentityFromClaims rehydrates the full identity for verified claims.
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	if claims == nil {
		return nil, ErrMissingToken
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("IdentityFromClaims lookup failed", "error", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)
