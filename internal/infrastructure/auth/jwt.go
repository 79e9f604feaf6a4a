package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the token claims this backend relies on. Tokens are minted by
// the external identity service; the subject carries the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenValidator verifies bearer tokens. This service never issues tokens.
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a validator for HS256 tokens signed with secret.
// An empty issuer disables the issuer check.
func NewTokenValidator(secret, issuer string) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Validate parses and verifies the token and returns the user ID from its
// subject claim
func (v *TokenValidator) Validate(tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, nil, ErrExpiredToken
		}
		return uuid.Nil, nil, ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, nil, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return uuid.Nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidToken
	}
	return userID, claims, nil
}
