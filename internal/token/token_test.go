package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	tokenString, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	userID, err := svc.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := &Service{secret: []byte("test-secret"), ttl: -time.Minute}

	tokenString, err := svc.Issue("user-123")
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	tokenString, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewServiceDefaultsTTL(t *testing.T) {
	svc := NewService("test-secret", 0)
	assert.Equal(t, DefaultTTL, svc.ttl)
}
