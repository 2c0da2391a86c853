package security

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/garyjia/surat-menyurat/internal/application/port"
)

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type googleIDTokenVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleIDTokenVerifier checks Google Sign-In ID tokens issued for
// clientID. Signing keys are fetched and cached by the idtoken package.
func NewGoogleIDTokenVerifier(clientID string) port.IDTokenVerifier {
	return &googleIDTokenVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *googleIDTokenVerifier) Verify(ctx context.Context, token string) (*port.ExternalIdentity, error) {
	payload, err := v.validate(ctx, strings.TrimSpace(token), v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google id token: %w", err)
	}

	identity := &port.ExternalIdentity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
	}
	// email_verified arrives as a bool, or as a string from older issuers
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = verified
	case string:
		identity.EmailVerified = verified == "true"
	}
	if identity.Name == "" {
		identity.Name = identity.Email
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
