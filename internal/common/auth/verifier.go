// Package auth verifies bearer credentials and derives the request
// principal. The verifier itself is abstract; the JWT adapter is the
// concrete implementation used in production.
package auth

import (
	"context"
	"fmt"
	"strings"

	"blood-sea-api/internal/common/errors"
)

// Principal is the authenticated caller derived from a verified credential.
type Principal struct {
	ID            string
	Email         string
	EmailVerified bool
	Role          string
	Claims        map[string]interface{}
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && p.Role == role
}

// Credential failure kinds, distinguished so callers can tell an expired
// session from a bad token.
const (
	KindExpired   = "expired"
	KindRevoked   = "revoked"
	KindMalformed = "malformed"
	KindUnknown   = "unknown"
)

// AuthError wraps a credential verification failure with its kind.
type AuthError struct {
	Kind string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth failed (%s)", e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IdentityVerifier checks a bearer token and returns the principal it
// represents. Failures are *AuthError values.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ParseBearer extracts the token from an Authorization header. A missing
// or malformed header fails before any verifier call.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", &AuthError{Kind: KindMalformed, Err: fmt.Errorf("missing authorization header")}
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", &AuthError{Kind: KindMalformed, Err: fmt.Errorf("authorization header is not a bearer token")}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", &AuthError{Kind: KindMalformed, Err: fmt.Errorf("empty bearer token")}
	}
	return token, nil
}

// ToStandardError maps a verification failure to the stable error codes
// used on the wire.
func ToStandardError(err error) *errors.StandardError {
	authErr, ok := err.(*AuthError)
	if !ok {
		return errors.NewUnauthorizedError(err.Error())
	}
	switch authErr.Kind {
	case KindExpired:
		return errors.NewTokenExpiredError()
	case KindRevoked:
		return errors.NewTokenRevokedError()
	case KindMalformed:
		return errors.NewTokenMalformedError(authErr.Error())
	default:
		return errors.NewUnauthorizedError(authErr.Error())
	}
}
