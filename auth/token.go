package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the self-describing token payload
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenStrategy implements stateless authentication: the credential is a
// signed, expiring JWT and no server-side record exists. The flip side is
// that a valid, unexpired token cannot be revoked before its natural expiry;
// logout is a client-side discard.
type TokenStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenStrategy creates a token strategy with the given signing secret
// and token TTL.
func NewTokenStrategy(secret string, ttl time.Duration) *TokenStrategy {
	return &TokenStrategy{secret: []byte(secret), ttl: ttl}
}

// Name returns the strategy name.
func (s *TokenStrategy) Name() string { return StrategyToken }

// Issue builds and signs a token carrying the user identity.
func (s *TokenStrategy) Issue(ctx context.Context, userID int64, username string) (*Credential, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Credential{Value: signed, ExpiresAt: expiresAt}, nil
}

// Validate checks signature and expiry. A tampered payload, a token signed
// with a different key, and an expired token all fail the same way.
func (s *TokenStrategy) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrInvalidCredential
	}

	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Invalidate is a no-op: there is no server-side record to remove, so logout
// reports success without any state change.
func (s *TokenStrategy) Invalidate(ctx context.Context, credential string) error {
	return nil
}
