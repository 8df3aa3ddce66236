package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

const (
	TextCodeInvalidCredentials  = "invalid_credentials"
	TextCodeIdentityNotFound    = "identity_not_found"
	TextCodeMissingToken        = "missing_token"
	TextCodeTokenExpired        = "token_expired"
	TextCodeTokenMalformed      = "token_malformed"
	TextCodeTokenForged         = "token_forged"
	TextCodeTokenRevoked        = "token_revoked"
	TextCodeRefreshInvalid      = "refresh_token_invalid"
	TextCodeForbidden           = "forbidden"
	TextCodeInvalidRole         = "invalid_role"
	TextCodePasswordMismatch    = "password_mismatch"
	TextCodeLoginKeyTaken       = "login_key_taken"
	TextCodeEmptyPassword       = "empty_password"
	TextCodeMissingSigningKey   = "missing_signing_key"
	TextCodeImmutableClaimDrift = "immutable_claim_drift"
)

// ErrInvalidCredentials covers both an unknown login key and a bad password.
// Callers get the same answer either way so accounts cannot be enumerated.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is returned when a token is valid but the underlying
// record is gone, e.g. the account was deleted after issuance.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingToken is returned when a protected request carries no bearer token.
var ErrMissingToken = errors.New("authorization failed: token not found", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's absolute expiry has elapsed.
var ErrTokenExpired = errors.New("authorization failed: token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// ErrTokenMalformed is returned for tokens that do not parse or are missing
// required claim fields.
var ErrTokenMalformed = errors.New("authorization failed: invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeForbidden)

// ErrTokenForged is returned when the signature does not verify under the
// configured key, regardless of claim content.
var ErrTokenForged = errors.New("authorization failed: invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenForged).
	WithCode(errors.CodeForbidden)

// ErrTokenRevoked is returned when the token id is on the denylist.
var ErrTokenRevoked = errors.New("authorization failed: token revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeForbidden)

// ErrRefreshTokenInvalid is returned by the refresh flow for any refresh
// token that fails verification. No new access token is issued.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshInvalid).
	WithCode(errors.CodeForbidden)

// ErrForbidden is returned for a valid token with an insufficient role.
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrMismatchedHashAndPassword is returned when a plaintext password does not
// verify against a stored hash. Malformed hashes produce the same error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrLoginKeyTaken is returned when registering a duplicate email or username.
var ErrLoginKeyTaken = errors.New("email or username already registered", errors.CategoryConflict).
	WithTextCode(TextCodeLoginKeyTaken).
	WithCode(errors.CodeConflict)

// isRecordNotFound classifies store-level misses. The repository layer tags
// its not-found errors with a database-specific category, so the generic
// category check alone does not catch them.
func isRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.IsNotFound(err)
}

// IsTokenExpiredError will check for expired tokens, including the legacy
// string form emitted by jwt parsers wrapped in plain errors.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
