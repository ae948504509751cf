package store

import "time"

// Pending is the in-flight authorization kept in the OAuth session while the
// browser visits the login page or the consent screen.
type Pending struct {
	Request *AuthorizationRequest `json:"request"`
	// CSRFToken is set when a consent screen was rendered.
	CSRFToken string `json:"csrf_token,omitempty"`
	// Subject is the user the consent screen was rendered for.
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
