// Package auth issues and checks access tokens, hashes passwords, and carries
// the authenticated session through request contexts.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

// JWTManager handles access token generation and validation.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// TTL is the lifetime of issued access tokens.
func (m *JWTManager) TTL() time.Duration { return m.accessTTL }

// accessClaims extends standard JWT claims with the user's role. The token ID
// (jti) is the sign-in session id.
type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Issue creates a signed HS256 JWT for s. It returns the token and its expiry.
func (m *JWTManager) Issue(s Session) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.accessTTL)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID.String(),
			Issuer:    m.issuer,
			ID:        s.SessionID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(s.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate parses and validates an access token and returns the session it
// was issued for. Whether that session is still live is the caller's check.
func (m *JWTManager) Validate(tokenString string) (Session, error) {
	if tokenString == "" {
		return Session{}, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return Session{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return Session{}, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("invalid subject UUID: %w", err)
	}
	if claims.ID == "" {
		return Session{}, fmt.Errorf("token has no session id")
	}

	return Session{
		UserID:    userID,
		Role:      domain.ParseRole(claims.Role),
		SessionID: claims.ID,
	}, nil
}
