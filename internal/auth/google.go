package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrGoogleDisabled is returned when no Google client ID is configured.
var ErrGoogleDisabled = errors.New("google sign-in not configured")

// GoogleIdentity is the subset of ID token claims used for sign-in.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleVerifier checks Google ID tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// IDTokenVerifier validates tokens against Google's public keys.
type IDTokenVerifier struct {
	clientID string
}

// NewIDTokenVerifier verifies tokens issued for clientID.
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, ErrGoogleDisabled
	}
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, fmt.Errorf("validate google id token: %w", err))
	}
	return identityFromClaims(payload.Subject, payload.Claims), nil
}

func identityFromClaims(subject string, claims map[string]interface{}) *GoogleIdentity {
	id := &GoogleIdentity{Subject: subject}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		id.Name = v
	}
	switch v := claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = v
	case string:
		id.EmailVerified = v == "true"
	}
	return id
}
