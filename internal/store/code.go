package store

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"golang.org/x/oauth2"

	"github.com/intrafind/ihub-apps-sub004/internal/constants"
)

const (
	codeMaxSize = 10000 // in bytes
)

// AuthorizationCode is the state an issued code is bound to. It carries no
// session state of its own; the token endpoint redeems it exactly once.
type AuthorizationCode struct {
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	UserID              string    `json:"user_id"`
	UserEmail           string    `json:"user_email,omitempty"`
	UserName            string    `json:"user_name,omitempty"`
	UserGroups          []string  `json:"user_groups,omitempty"`
	Scopes              []string  `json:"scopes"`
	CodeChallenge       string    `json:"code_challenge,omitempty"`
	CodeChallengeMethod string    `json:"code_challenge_method,omitempty"`
	Nonce               string    `json:"nonce,omitempty"`
	IssuedAt            time.Time `json:"issued_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// VerifyPKCE checks a code_verifier presented at the token endpoint against the
// challenge bound to the code. A code issued without a challenge only accepts an
// empty verifier.
func (c *AuthorizationCode) VerifyPKCE(verifier string) bool {
	if c.CodeChallenge == "" {
		return verifier == ""
	}
	if c.CodeChallengeMethod != constants.AuthorizationServerCodeChallengeMethod || verifier == "" {
		return false
	}
	computed := oauth2.S256ChallengeFromVerifier(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(c.CodeChallenge)) == 1
}

func (c *AuthorizationCode) size() uint {
	size := uint(len(c.ClientID) + len(c.RedirectURI) + len(c.UserID) + len(c.UserEmail) +
		len(c.UserName) + len(c.CodeChallenge) + len(c.CodeChallengeMethod) + len(c.Nonce))
	for _, g := range c.UserGroups {
		size += uint(len(g))
	}
	for _, s := range c.Scopes {
		size += uint(len(s))
	}
	return size
}

// generateSecureCode generates a random 32-byte key. It is used for
// authorization codes, CSRF tokens and OAuth session ids.
func generateSecureCode() ([32]byte, error) {
	var b [32]byte
	_, err := rand.Read(b[:])
	return b, err
}

// GenerateToken returns 256 random bits encoded as unpadded base64url.
func GenerateToken() (string, error) {
	b, err := generateSecureCode()
	if err != nil {
		return "", err
	}
	return encodeKey(b), nil
}

func encodeKey(b [32]byte) string {
	return base64.RawURLEncoding.EncodeToString(b[:])
}
