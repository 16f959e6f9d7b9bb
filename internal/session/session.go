// Package session issues and verifies bearer tokens. Tokens are signed
// JWTs; logout revokes a token id until the token would have expired.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ecoChallengeAPI/internal/apperr"
)

var (
	ErrInvalidToken = apperr.New(apperr.KindUnauthorized, "Invalid or expired token")
	ErrRevokedToken = apperr.New(apperr.KindUnauthorized, "Session has been logged out")
)

type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration, issuer string, revoked RevocationStore) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a new token for userID.
func (m *Manager) Issue(userID int64) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature, expiry, issuer and revocation.
func (m *Manager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("failed to check session", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke blocks the token id for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return errors.New("session: claims without expiry")
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Internal("failed to revoke session", err)
	}
	return nil
}
