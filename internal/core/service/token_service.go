package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicops/incident-api/internal/core/domain"
)

// minSecretBytes is the HS256 key floor (256 bits).
const minSecretBytes = 32

// TokenService issues and verifies HS256 bearer tokens whose subject is the
// principal's username. Verification is stateless; tokens cannot be revoked
// before they expire.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, validity time.Duration) (*TokenService, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("token service: secret must be at least %d bytes", minSecretBytes)
	}
	if validity <= 0 {
		return nil, errors.New("token service: validity must be positive")
	}
	return &TokenService{secret: []byte(secret), validity: validity, now: time.Now}, nil
}

// Issue signs a token for principal valid from now until now+validity.
func (s *TokenService) Issue(principal domain.Principal) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   principal.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// SubjectOf verifies token and returns the username it was issued for.
func (s *TokenService) SubjectOf(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsValid reports whether token was issued for principal and has not expired.
func (s *TokenService) IsValid(token string, principal domain.Principal) bool {
	claims, err := s.parse(token)
	if err != nil {
		return false
	}
	if claims.Subject != principal.Username || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.After(s.now())
}

func (s *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
