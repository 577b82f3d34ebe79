package service

import (
	"context"
	"fmt"

	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/security"
)

// AuthService exchanges provider credentials for API access tokens.
type AuthService struct {
	verifier   security.IdentityVerifier
	jwtManager *security.JWTManager
	allowed    map[string]struct{}
}

// NewAuthService creates a new auth service. allowedEmails is the optional
// sign-in allow-list; empty means every verified identity is accepted.
func NewAuthService(verifier security.IdentityVerifier, jwtManager *security.JWTManager, allowedEmails []string) *AuthService {
	var allowed map[string]struct{}
	if len(allowedEmails) > 0 {
		allowed = make(map[string]struct{}, len(allowedEmails))
		for _, e := range allowedEmails {
			allowed[e] = struct{}{}
		}
	}
	return &AuthService{
		verifier:   verifier,
		jwtManager: jwtManager,
		allowed:    allowed,
	}
}

// ExchangeGoogleCredential verifies a Google ID token and mints an API
// access token for the asserted identity.
func (s *AuthService) ExchangeGoogleCredential(ctx context.Context, credential string) (*domain.AuthResult, error) {
	user, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	if s.allowed != nil {
		if _, ok := s.allowed[user.Email]; !ok {
			return nil, domain.E(domain.KindAuthorization, "email is not permitted to sign in")
		}
	}

	token, err := s.jwtManager.GenerateAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{User: *user, Token: token}, nil
}
