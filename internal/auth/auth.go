// Package auth verifies the admin credential and issues bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Login on a bad username/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned by Authenticate for missing, malformed,
	// expired, or foreign tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// Service checks the single configured admin credential and signs stateless
// access tokens. Tokens carry only subject and expiry; there is no
// revocation, so rotating the credential does not invalidate tokens already
// issued within their window.
type Service struct {
	username     string
	passwordHash []byte
	secret       []byte
	method       jwt.SigningMethod
	lifetime     time.Duration

	now func() time.Time
}

// New builds a Service. algorithm must name an HMAC signing method (HS256,
// HS384, HS512) since the secret is a shared key.
func New(username, passwordHash, secret, algorithm string, lifetime time.Duration) (*Service, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not HMAC-based", algorithm)
	}
	return &Service{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		method:       method,
		lifetime:     lifetime,
		now:          time.Now,
	}, nil
}

// Login verifies the credential and returns a signed token valid for the
// configured lifetime. The bcrypt comparison runs even for a wrong username
// so both failure paths cost the same.
func (s *Service) Login(username, password string) (string, error) {
	hashErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if username != s.username || hashErr != nil {
		return "", ErrInvalidCredentials
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate validates signature, expiry, and subject of a bearer token
// and returns the subject.
func (s *Service) Authenticate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject != s.username {
		return "", fmt.Errorf("%w: unknown subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}
