package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, lifetime time.Duration) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	s, err := New("admin", string(hash), "signing-key", "HS256", lifetime)
	require.NoError(t, err)
	return s
}

func TestLoginAndAuthenticate(t *testing.T) {
	s := newTestService(t, 30*time.Minute)
	tok, err := s.Login("admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	sub, err := s.Authenticate(tok)
	require.NoError(t, err)
	require.Equal(t, "admin", sub)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestService(t, 30*time.Minute)
	_, err := s.Login("admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongUsername(t *testing.T) {
	s := newTestService(t, 30*time.Minute)
	_, err := s.Login("root", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateGarbage(t *testing.T) {
	s := newTestService(t, 30*time.Minute)
	_, err := s.Authenticate("not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateWrongKey(t *testing.T) {
	s := newTestService(t, 30*time.Minute)
	tok, err := s.Login("admin", "s3cret")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	other, err := New("admin", string(hash), "different-key", "HS256", 30*time.Minute)
	require.NoError(t, err)
	_, err = other.Authenticate(tok)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenExpiry(t *testing.T) {
	s := newTestService(t, time.Minute)
	issued := time.Now()
	s.now = func() time.Time { return issued }
	tok, err := s.Login("admin", "s3cret")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(30 * time.Second) }
	_, err = s.Authenticate(tok)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = s.Authenticate(tok)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewRejectsNonHMAC(t *testing.T) {
	_, err := New("admin", "hash", "key", "RS256", time.Minute)
	require.Error(t, err)
	_, err = New("admin", "hash", "key", "bogus", time.Minute)
	require.Error(t, err)
}
