package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
)

var (
	ErrMissingAudience = errors.New("google client id is not configured")
	ErrWrongIssuer     = errors.New("token was not issued by Google")
	ErrMissingEmail    = errors.New("token carries no email claim")
)

var validIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// Verifier validates Google ID tokens (signature against Google's current
// public keys, expiry and audience) and extracts the identity claims.
type Verifier struct {
	validator *idtoken.Validator
}

func NewVerifier(ctx context.Context, httpTimeout time.Duration) (*Verifier, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: httpTimeout}))
	if err != nil {
		return nil, err
	}
	return &Verifier{validator: v}, nil
}

func (v *Verifier) Verify(ctx context.Context, assertion, audience string) (*entity.FederatedIdentity, error) {
	// idtoken skips the audience check for an empty audience
	if strings.TrimSpace(audience) == "" {
		return nil, ErrMissingAudience
	}
	payload, err := v.validator.Validate(ctx, assertion, audience)
	if err != nil {
		return nil, err
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*entity.FederatedIdentity, error) {
	if _, ok := validIssuers[p.Issuer]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrWrongIssuer, p.Issuer)
	}
	id := &entity.FederatedIdentity{
		Email:         stringClaim(p.Claims, "email"),
		Name:          stringClaim(p.Claims, "name"),
		Picture:       stringClaim(p.Claims, "picture"),
		EmailVerified: boolClaim(p.Claims, "email_verified"),
	}
	if id.Email == "" {
		return nil, ErrMissingEmail
	}
	return id, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// boolClaim accepts both JSON booleans and the "true"/"false" strings some
// Google tokens carry.
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
