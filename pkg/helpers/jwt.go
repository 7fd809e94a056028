package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMalformedToken   = errors.New("malformed token")
)

// TokenIssuer signs and validates the service's own bearer tokens (HS256).
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	// Now is the clock used for issuing and validating; defaults to time.Now.
	Now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func (m *TokenIssuer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Issue returns a signed token for userID expiring after TTL.
func (m *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Validate verifies signature and expiry and returns the user id carried by the token.
func (m *TokenIssuer) Validate(tokenStr string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrInvalidSignature
	default:
		return "", ErrMalformedToken
	}
	if !tkn.Valid || claims.UserID == "" {
		return "", ErrMalformedToken
	}
	return claims.UserID, nil
}
