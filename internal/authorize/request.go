package authorize

import (
	"fmt"
	"net/url"

	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

var singleValueParams = []string{
	constants.ParamResponseType,
	constants.ParamClientID,
	constants.ParamRedirectURI,
	constants.ParamScope,
	constants.ParamState,
	constants.ParamCodeChallenge,
	constants.ParamCodeChallengeMethod,
	constants.ParamNonce,
	constants.ParamPrompt,
}

// ParseRequest reads an authorization request from the query parameters of the
// authorization endpoint. Values are taken verbatim; only repeated parameters
// are rejected here.
func ParseRequest(q url.Values) (*store.AuthorizationRequest, error) {
	for _, name := range singleValueParams {
		if len(q[name]) > 1 {
			return nil, oautherr.InvalidRequest(fmt.Sprintf("parameter '%s' must not be repeated", name))
		}
	}
	return &store.AuthorizationRequest{
		ResponseType:        q.Get(constants.ParamResponseType),
		ClientID:            q.Get(constants.ParamClientID),
		RedirectURI:         q.Get(constants.ParamRedirectURI),
		Scopes:              store.ParseScopes(q.Get(constants.ParamScope)),
		State:               q.Get(constants.ParamState),
		CodeChallenge:       q.Get(constants.ParamCodeChallenge),
		CodeChallengeMethod: q.Get(constants.ParamCodeChallengeMethod),
		Nonce:               q.Get(constants.ParamNonce),
		Prompt:              q.Get(constants.ParamPrompt),
	}, nil
}
