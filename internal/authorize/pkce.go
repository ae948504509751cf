package authorize

import (
	"regexp"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

// An S256 challenge is the unpadded base64url SHA-256 of the verifier.
var s256ChallengeRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// enforcePKCE requires an S256 challenge from public clients. Confidential
// clients may omit PKCE, but a challenge they do send must be S256 as well.
func enforcePKCE(c *client.Client, req *store.AuthorizationRequest) error {
	if req.CodeChallenge == "" {
		if req.CodeChallengeMethod != "" {
			return oautherr.InvalidRequest("code_challenge_method requires code_challenge")
		}
		if c.IsPublic() {
			return oautherr.InvalidRequest("code_challenge is required for public clients")
		}
		return nil
	}
	if req.CodeChallengeMethod != constants.AuthorizationServerCodeChallengeMethod {
		return oautherr.InvalidRequest("code_challenge_method must be S256")
	}
	if !s256ChallengeRegexp.MatchString(req.CodeChallenge) {
		return oautherr.InvalidRequest("code_challenge is malformed")
	}
	return nil
}
