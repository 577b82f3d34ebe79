package security

import (
	"context"

	"github.com/ocha-app/ocha/internal/domain"
	"google.golang.org/api/idtoken"
)

// IdentityVerifier validates a provider credential and yields the identity
// it asserts. Implemented by GoogleVerifier; stubbed in tests.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*domain.User, error)
}

// GoogleVerifier validates Google ID tokens against a client id.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier for the given OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify checks the credential's signature and audience and extracts the
// asserted identity.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*domain.User, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, domain.Wrap(domain.KindAuthentication, "invalid google credential", err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" || name == "" {
		return nil, domain.E(domain.KindAuthentication, "credential is missing required user information")
	}

	picture, _ := payload.Claims["picture"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)

	return &domain.User{
		ID:            payload.Subject,
		Email:         email,
		Name:          name,
		Picture:       picture,
		VerifiedEmail: verified,
	}, nil
}
