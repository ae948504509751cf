package store

import (
	"slices"
	"strings"

	"github.com/intrafind/ihub-apps-sub004/internal/constants"
)

// AuthorizationRequest is an OAuth 2.0 authorization request as received on the
// authorization endpoint. It only lives for the duration of one flow.
type AuthorizationRequest struct {
	ResponseType        string   `json:"response_type"`
	ClientID            string   `json:"client_id"`
	RedirectURI         string   `json:"redirect_uri"`
	Scopes              []string `json:"scopes"`
	State               string   `json:"state,omitempty"`
	CodeChallenge       string   `json:"code_challenge,omitempty"`
	CodeChallengeMethod string   `json:"code_challenge_method,omitempty"`
	Nonce               string   `json:"nonce,omitempty"`
	Prompt              string   `json:"prompt,omitempty"`
}

func (a *AuthorizationRequest) Scope() string {
	return strings.Join(a.Scopes, " ")
}

// HasPrompt reports whether the space-delimited prompt parameter contains value.
func (a *AuthorizationRequest) HasPrompt(value string) bool {
	return slices.Contains(strings.Fields(a.Prompt), value)
}

// ParseScopes splits a space-delimited scope parameter keeping the first
// occurrence order. An empty parameter yields the default scope.
func ParseScopes(s string) []string {
	var scopes []string
	for _, sc := range strings.Fields(s) {
		if !slices.Contains(scopes, sc) {
			scopes = append(scopes, sc)
		}
	}
	if len(scopes) == 0 {
		return []string{constants.AuthorizationServerDefaultScope}
	}
	return scopes
}
