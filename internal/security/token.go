package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/volunteerhub/auth-service/domain"
)

// Claims is the verified content of a session token.
type Claims struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	UserType domain.UserType `json:"userType"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier validates a presented token and extracts its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// TokenManager issues and verifies HS256-signed JWTs. The signing method
// is fixed; tokens carrying any other algorithm header are rejected.
type TokenManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewTokenManager builds a manager from the base64-encoded signing secret
// and the token time-to-live. The secret is decoded once here; a secret
// that does not decode is a configuration error and must abort startup.
func NewTokenManager(encodedSecret string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	key, err := base64.StdEncoding.DecodeString(encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("decoding signing secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenManager{
		key:    key,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// Issue builds a token with subject=user.ID and the email/name/userType
// claims, valid from now until now+ttl.
func (m *TokenManager) Issue(user *domain.User) (string, error) {
	if user == nil {
		return "", domain.ErrInvalidPayload
	}
	issuedAt := m.now()
	claims := Claims{
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Verify checks the signature and expiry of a presented token. Every
// failure surfaces as domain.ErrTokenInvalid; the underlying cause is
// logged but never returned, so callers cannot tell a tampered token from
// an expired one.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		m.logger.Warn("token rejected", zap.Error(err))
		return nil, domain.ErrTokenInvalid
	}

	// Time validation runs against the manager's own clock so it stays
	// deterministic under test. Expiry is inclusive: a token presented at
	// its expiry instant is already invalid.
	if claims.ExpiresAt == nil || !m.now().Before(claims.ExpiresAt.Time) {
		m.logger.Warn("token rejected", zap.String("reason", "expired"))
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}
