package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/shared"
)

// Claims embeds the caller's role and email alongside the registered set.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed, time-limited bearer tokens.
// Tokens are stateless; there is no server-side revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL exposes the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token embedding user id, email, and role.
func (m *TokenManager) Issue(userID uuid.UUID, email string, role shared.Role) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded identity.
// Any failure collapses to ErrUnauthorized so callers cannot distinguish
// malformed, tampered, and expired tokens.
func (m *TokenManager) Verify(raw string) (*shared.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("auth: %w: %w", shared.ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("auth: %w: bad subject", shared.ErrUnauthorized)
	}
	role := shared.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("auth: %w: bad role", shared.ErrUnauthorized)
	}

	return &shared.Identity{UserID: userID, Email: claims.Email, Role: role}, nil
}
