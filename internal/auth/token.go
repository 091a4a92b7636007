package auth

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "teamspace"

// IssueToken creates a signed JWT for the given principal. Used by the CLI
// and service integrations; browser clients use session cookies instead.
// signingKeyPEM is the PEM-encoded ECDSA private key.
func IssueToken(signingKeyPEM string, principalID uuid.UUID, email string, ttl time.Duration) (string, error) {
	signingKey, err := jwt.ParseECPrivateKeyFromPEM([]byte(signingKeyPEM))
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   tokenIssuer,
		"sub":   principalID.String(),
		"email": email,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(signingKey)
}

// TokenVerifier verifies bearer JWTs against the platform's public key and
// extracts the principal they assert.
type TokenVerifier struct {
	publicKey *ecdsa.PublicKey
}

// NewTokenVerifier creates a verifier from a PEM-encoded ECDSA public key.
func NewTokenVerifier(publicKeyPEM string) (*TokenVerifier, error) {
	publicKey, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse verification key: %w", err)
	}

	return &TokenVerifier{publicKey: publicKey}, nil
}

// Verify checks the token's signature, issuer, and expiry, and returns the
// principal it asserts. The credential contents are never included in the
// returned error.
func (v *TokenVerifier) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("missing sub claim: %w", err)
	}

	principalID, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim: %w", err)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("missing email claim")
	}

	return &Principal{
		PrincipalID: principalID,
		Email:       email,
	}, nil
}

// ParsePublicKeyPEM parses a PEM-encoded ECDSA public key.
func ParsePublicKeyPEM(pemStr string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("not an ECDSA public key")
	}

	return ecdsaPub, nil
}
