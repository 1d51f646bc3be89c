// Package auth provides the identity token and password hashing primitives
// consumed by the authentication service and the HTTP middleware.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhub/taskhub/policy"
)

// TokenTTL is the fixed validity window of every issued token. Expiry is the
// only termination mechanism; there is no refresh or revocation.
const TokenTTL = 2 * time.Hour

// Claims is the signed token payload: subject name, role, numeric subject id
// (as the registered sub claim), and expiry.
type Claims struct {
	Username string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies identity tokens with a shared HS256 secret.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates an issuer for the given secret. An empty secret is
// allowed here but Issue will refuse to sign with it.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs a token for the given identity, valid for TokenTTL from now.
func (i *TokenIssuer) Issue(username, role string, userID int64) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("signing key unavailable")
	}
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token's signature and expiry and returns the principal
// it asserts.
func (i *TokenIssuer) Verify(tokenString string) (policy.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return policy.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return policy.Principal{}, errors.New("invalid token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return policy.Principal{UserID: userID, Role: claims.Role}, nil
}
