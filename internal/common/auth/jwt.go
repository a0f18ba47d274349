// internal/common/auth/jwt.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"blood-sea-api/internal/common/config"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier verifies HS256 bearer tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(cfg config.AuthConfig) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenStr string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, &AuthError{Kind: classifyJWTError(err), Err: err}
	}
	if !token.Valid {
		return nil, &AuthError{Kind: KindUnknown, Err: fmt.Errorf("token rejected")}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, &AuthError{Kind: KindMalformed, Err: fmt.Errorf("token has no subject")}
	}

	email, _ := claims["email"].(string)
	emailVerified, _ := claims["email_verified"].(bool)
	role, _ := claims["role"].(string)
	if role == "" {
		role = "user"
	}

	return &Principal{
		ID:            sub,
		Email:         email,
		EmailVerified: emailVerified,
		Role:          role,
		Claims:        claims,
	}, nil
}

func classifyJWTError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return KindExpired
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return KindMalformed
	default:
		return KindUnknown
	}
}
