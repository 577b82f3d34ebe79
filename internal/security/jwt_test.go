package security_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/security"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	user := domain.User{
		ID:            "sub-123",
		Email:         "test@example.com",
		Name:          "Test User",
		Picture:       "https://example.com/pic.png",
		VerifiedEmail: true,
	}

	// Generate access token
	accessToken, err := manager.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if accessToken == "" {
		t.Error("access token is empty")
	}

	// Validate access token
	claims, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.Subject != user.ID {
		t.Errorf("subject mismatch: got %v, want %v", claims.Subject, user.ID)
	}

	if claims.Email != user.Email {
		t.Errorf("email mismatch: got %v, want %v", claims.Email, user.Email)
	}

	got := claims.User()
	if got != user {
		t.Errorf("reconstructed user mismatch: got %+v, want %+v", got, user)
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)
	other := security.NewJWTManager("a-different-secret-entirely!!!!!", 15*time.Minute)

	token, err := manager.GenerateAccessToken(domain.User{ID: "sub-123", Email: "test@example.com"})
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute)

	token, err := manager.GenerateAccessToken(domain.User{ID: "sub-123", Email: "test@example.com"})
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	for _, tok := range []string{"", "not-a-token", strings.Repeat("a.", 3)} {
		if _, err := manager.ValidateAccessToken(tok); err == nil {
			t.Errorf("expected validation to fail for %q", tok)
		}
	}
}
