package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a relay bearer credential.
//
// It embeds [jwt.Token] for signing and parsing and [jwt.RegisteredClaims]
// for standard claim access. The "sub" claim carries the identity documents
// and ACL rows are keyed by.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// Identity is the authenticated subject, cached after validation.
	Identity string `json:"-"`
}

// GetIdentity returns the "sub" claim of the token.
func (t *Token) GetIdentity() (string, error) {
	identity, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting identity from token: %w", err)
	}
	if identity == "" {
		return "", fmt.Errorf("error extracting identity from token: empty subject")
	}
	return identity, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
