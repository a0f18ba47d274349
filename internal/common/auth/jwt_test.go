package auth

import (
	"context"
	"testing"
	"time"

	"blood-sea-api/internal/common/config"
	"blood-sea-api/internal/common/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":            "user-1",
		"email":          "donor@example.com",
		"email_verified": true,
		"role":           "donor",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func newVerifier() *JWTVerifier {
	return NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret})
}

// ==========================
// Verifier Tests
// ==========================

func TestJWTVerifier_ValidToken(t *testing.T) {
	principal, err := newVerifier().Verify(context.Background(), signToken(t, testSecret, validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, "donor@example.com", principal.Email)
	assert.True(t, principal.EmailVerified)
	assert.Equal(t, "donor", principal.Role)
	assert.True(t, principal.HasRole("donor"))
	assert.False(t, principal.HasRole("admin"))
}

func TestJWTVerifier_DefaultsRoleToUser(t *testing.T) {
	claims := validClaims()
	delete(claims, "role")

	principal, err := newVerifier().Verify(context.Background(), signToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, "user", principal.Role)
}

func TestJWTVerifier_Failures(t *testing.T) {
	tests := []struct {
		name         string
		token        func(t *testing.T) string
		expectedKind string
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				claims := validClaims()
				claims["exp"] = time.Now().Add(-time.Hour).Unix()
				return signToken(t, testSecret, claims)
			},
			expectedKind: KindExpired,
		},
		{
			name: "wrong signature",
			token: func(t *testing.T) string {
				return signToken(t, "other-secret", validClaims())
			},
			expectedKind: KindMalformed,
		},
		{
			name: "garbage token",
			token: func(t *testing.T) string {
				return "not.a.jwt"
			},
			expectedKind: KindMalformed,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				claims := validClaims()
				delete(claims, "sub")
				return signToken(t, testSecret, claims)
			},
			expectedKind: KindMalformed,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				claims := validClaims()
				delete(claims, "exp")
				return signToken(t, testSecret, claims)
			},
			expectedKind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newVerifier().Verify(context.Background(), tt.token(t))
			require.Error(t, err)

			authErr, ok := err.(*AuthError)
			require.True(t, ok, "expected *AuthError, got %T", err)
			assert.Equal(t, tt.expectedKind, authErr.Kind)
		})
	}
}

func TestJWTVerifier_IssuerAndAudience(t *testing.T) {
	verifier := NewJWTVerifier(config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "blood-sea",
		Audience:  "blood-sea-api",
	})

	claims := validClaims()
	claims["iss"] = "blood-sea"
	claims["aud"] = "blood-sea-api"

	_, err := verifier.Verify(context.Background(), signToken(t, testSecret, claims))
	assert.NoError(t, err)

	claims["iss"] = "someone-else"
	_, err = verifier.Verify(context.Background(), signToken(t, testSecret, claims))
	assert.Error(t, err)
}

// ==========================
// Bearer Header Tests
// ==========================

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		token   string
		wantErr bool
	}{
		{"valid header", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing header", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"empty token", "Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseBearer(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				authErr, ok := err.(*AuthError)
				require.True(t, ok)
				assert.Equal(t, KindMalformed, authErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}

// ==========================
// Error Mapping Tests
// ==========================

func TestToStandardError(t *testing.T) {
	tests := []struct {
		kind         string
		expectedCode errors.ErrorCode
	}{
		{KindExpired, errors.ErrCodeTokenExpired},
		{KindRevoked, errors.ErrCodeTokenRevoked},
		{KindMalformed, errors.ErrCodeTokenMalformed},
		{KindUnknown, errors.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			stdErr := ToStandardError(&AuthError{Kind: tt.kind})
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.Equal(t, 401, errors.HTTPStatus(stdErr.Code))
		})
	}
}
