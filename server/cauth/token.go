package cauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// tokenExpiryBuffer is the minimum remaining lifetime a token needs so a
// request does not go out with a token that expires mid flight.
const tokenExpiryBuffer = time.Minute

var (
	ErrEmptyToken    = errors.New("token cannot be empty")
	ErrInvalidFormat = errors.New("token must contain three segments")
	ErrMissingExpiry = errors.New("token payload is missing an expiration timestamp")
)

type jwtClaims struct {
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
	Sub   string `json:"sub"`
}

// DecodedToken is a parsed campfire bearer token.
type DecodedToken struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// Valid reports whether the token is still usable for new requests.
func (t DecodedToken) Valid() bool {
	return time.Until(t.ExpiresAt) > tokenExpiryBuffer
}

// ParseToken decodes the claims of a campfire JWT without verifying its
// signature. Only the expiry and email claims are used, the signature is
// checked by campfire itself.
func ParseToken(token string) (*DecodedToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidFormat
	}

	tokenData, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("invalid token data: %w", err)
	}

	var claims jwtClaims
	if err = json.Unmarshal(tokenData, &claims); err != nil {
		return nil, fmt.Errorf("invalid token json: %w", err)
	}

	if claims.Exp == 0 {
		return nil, ErrMissingExpiry
	}

	email := claims.Email
	if email == "" {
		email = claims.Sub
	}

	return &DecodedToken{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}
