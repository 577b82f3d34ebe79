package domain

// User is the identity carried by a verified credential. It is
// reconstructed per request from token claims and never persisted.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
	VerifiedEmail bool   `json:"verified_email"`
}

// GoogleAuthRequest is the sign-in exchange payload.
type GoogleAuthRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// AuthResult is returned after a successful credential exchange.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
