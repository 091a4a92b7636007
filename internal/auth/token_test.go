package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// generateKeyPair returns a PEM-encoded ECDSA P-256 key pair for tests.
func generateKeyPair(t *testing.T) (privatePEM, publicPEM string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	privatePEM = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER}))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))

	return privatePEM, publicPEM
}

func TestIssueAndVerifyToken(t *testing.T) {
	privatePEM, publicPEM := generateKeyPair(t)

	principalID := uuid.Must(uuid.NewV7())

	tokenString, err := IssueToken(privatePEM, principalID, "jane@example.com", time.Hour)
	require.NoError(t, err)

	verifier, err := NewTokenVerifier(publicPEM)
	require.NoError(t, err)

	principal, err := verifier.Verify(tokenString)
	require.NoError(t, err)
	require.Equal(t, principalID, principal.PrincipalID)
	require.Equal(t, "jane@example.com", principal.Email)
}

func TestVerifyToken_wrongKey(t *testing.T) {
	privatePEM, _ := generateKeyPair(t)
	_, otherPublicPEM := generateKeyPair(t)

	tokenString, err := IssueToken(privatePEM, uuid.Must(uuid.NewV7()), "jane@example.com", time.Hour)
	require.NoError(t, err)

	verifier, err := NewTokenVerifier(otherPublicPEM)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	require.Error(t, err)
}

func TestVerifyToken_expired(t *testing.T) {
	privatePEM, publicPEM := generateKeyPair(t)

	tokenString, err := IssueToken(privatePEM, uuid.Must(uuid.NewV7()), "jane@example.com", -time.Minute)
	require.NoError(t, err)

	verifier, err := NewTokenVerifier(publicPEM)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	require.Error(t, err)
}

func TestVerifyToken_garbage(t *testing.T) {
	_, publicPEM := generateKeyPair(t)

	verifier, err := NewTokenVerifier(publicPEM)
	require.NoError(t, err)

	_, err = verifier.Verify("not.a.jwt")
	require.Error(t, err)
}
