package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any token that cannot identify a user
var ErrUnauthorized = errors.New("unauthorized")

// DefaultExpiry is the lifetime of issued tokens
const DefaultExpiry = 24 * time.Hour

// Service issues and validates HS256 tokens whose subject is the user ID
type Service struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewService creates a token Service signing with secret
func NewService(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Service{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// GenerateToken returns a signed token for userID
func (s *Service) GenerateToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("auth: %w - empty user ID", ErrUnauthorized)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry and returns the user ID
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("auth: %w - invalid token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("auth: %w - token has no subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}
