package authorize

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

// issueCode binds a new authorization code to the request and the principal
// and redirects the browser to the client with the code and echoed state.
func (a *API) issueCode(w http.ResponseWriter, r *http.Request, c *client.Client,
	req *store.AuthorizationRequest, p *sessiontoken.Principal) bool {

	now := a.now()
	code, err := a.codes.StoreCode(r.Context(), &store.AuthorizationCode{
		ClientID:            c.ID,
		RedirectURI:         req.RedirectURI,
		UserID:              p.Subject,
		UserEmail:           p.Email,
		UserName:            p.Name,
		UserGroups:          slices.Clone(p.Groups),
		Scopes:              slices.Clone(req.Scopes),
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		Nonce:               req.Nonce,
		IssuedAt:            now,
		ExpiresAt:           now.Add(a.oauth.CodeTTL),
	})
	if err != nil {
		a.plainError(w, r, fmt.Errorf("failed to store authorization code: %w", err))
		return false
	}

	params := url.Values{}
	params.Set(constants.ParamAuthorizationCode, code)
	if req.State != "" {
		params.Set(constants.ParamState, req.State)
	}
	loc, err := oautherr.AppendQuery(req.RedirectURI, params)
	if err != nil {
		a.plainError(w, r, oautherr.InvalidRequest("malformed redirect_uri"))
		return false
	}

	a.metrics.outcomes.WithLabelValues(outcomeCodeIssued).Inc()
	logging.FromRequest(r).WithField("scopes", req.Scopes).Info("authorization code issued")
	http.Redirect(w, r, loc, http.StatusFound)
	return true
}
