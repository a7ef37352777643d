package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// defaultTTL applies when GenerateToken is given no lifetime.
const defaultTTL = 15 * time.Minute

// Claims is the token payload. Subject holds the identity.
type Claims struct {
	jwt.RegisteredClaims
}

// Identity returns the verified identity carried by the token.
func (c *Claims) Identity() string {
	return c.Subject
}

// GenerateToken signs a token for identity.
func GenerateToken(identity, secret string, ttl time.Duration) (string, error) {
	if err := mqtt.ValidateIdentity(identity); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims.
// It checks the signature, the algorithm, expiry and the subject, which
// must be usable as a topic segment.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if err := mqtt.ValidateIdentity(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject: %w", ErrTokenInvalid, err)
	}

	return claims, nil
}
