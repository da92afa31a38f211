package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"placelists/internal/domain"
)

// JWTTokens issues and verifies HS256 JWTs whose subject is the user ID.
type JWTTokens struct {
	secret []byte
}

// NewJWTTokens returns a TokenIssuer/TokenVerifier pair signed with the given secret.
func NewJWTTokens(secret string) *JWTTokens {
	return &JWTTokens{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer   = (*JWTTokens)(nil)
	_ domain.TokenVerifier = (*JWTTokens)(nil)
)

func (t *JWTTokens) Issue(userID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (t *JWTTokens) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
