package authorize

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

func (a *API) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.URL.Query())
	if err != nil {
		a.plainError(w, r, err)
		return
	}

	// Until the redirect URI is verified every failure is answered in place.
	c, err := client.ResolveWithRedirect(r.Context(), a.clients, req.ClientID, req.RedirectURI)
	if err != nil {
		a.plainError(w, r, err)
		return
	}
	l := logging.FromRequest(r).WithField("clientID", c.ID)
	r = logging.IntoRequest(r, l)

	if err := validateRequest(c, req); err != nil {
		a.redirectError(w, r, req, err)
		return
	}

	p := a.authenticate(r)
	if p == nil {
		if req.HasPrompt(constants.PromptNone) {
			a.redirectError(w, r, req, oautherr.New(http.StatusUnauthorized,
				constants.ErrLoginRequired, "user is not signed in"))
			return
		}
		if err := a.savePending(w, r, &store.Pending{Request: req}); err != nil {
			a.plainError(w, r, err)
			return
		}
		loginURL := a.oauth.LoginPath + "?" + url.Values{
			constants.ParamReturnURL: {r.URL.RequestURI()},
		}.Encode()
		a.metrics.outcomes.WithLabelValues(outcomeLoginRedirect).Inc()
		l.Info("redirecting unauthenticated user to login")
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}
	l = l.WithField("subject", p.Subject)
	r = logging.IntoRequest(r, l)

	decision, err := decide(c, req.HasPrompt(constants.PromptConsent), func() (bool, error) {
		return store.HasConsent(r.Context(), a.consents, c.ID, p.Subject, req.Scopes, a.now())
	})
	if err != nil {
		a.plainError(w, r, err)
		return
	}
	a.metrics.decisions.WithLabelValues(decision.String()).Inc()

	switch decision {
	case DecisionBypass, DecisionRemembered:
		a.discardPending(r)
		l.WithField("decision", decision.String()).Debug("consent not required")
		a.issueCode(w, r, c, req, p)
	default:
		if req.HasPrompt(constants.PromptNone) {
			a.redirectError(w, r, req, oautherr.New(http.StatusForbidden,
				constants.ErrConsentRequired, "user consent is required"))
			return
		}
		a.promptConsent(w, r, c, req, p.Subject)
	}
}

// validateRequest checks the parameters that can be reported to the already
// verified redirect URI.
func validateRequest(c *client.Client, req *store.AuthorizationRequest) error {
	if req.ResponseType == "" {
		return oautherr.InvalidRequest("missing response_type")
	}
	if req.ResponseType != constants.AuthorizationServerResponseType {
		return oautherr.New(http.StatusBadRequest, constants.ErrUnsupportedResponseType,
			fmt.Sprintf("response_type '%s' is not supported", req.ResponseType))
	}
	for _, s := range req.Scopes {
		if !c.AllowsScope(s) {
			return oautherr.New(http.StatusBadRequest, constants.ErrInvalidScope,
				fmt.Sprintf("scope '%s' is not allowed for this client", s))
		}
	}
	if req.HasPrompt(constants.PromptNone) && len(strings.Fields(req.Prompt)) > 1 {
		return oautherr.InvalidRequest("prompt=none must not be combined with other values")
	}
	return enforcePKCE(c, req)
}

func (a *API) promptConsent(w http.ResponseWriter, r *http.Request, c *client.Client,
	req *store.AuthorizationRequest, subject string) {

	csrfToken, err := store.GenerateToken()
	if err != nil {
		a.plainError(w, r, fmt.Errorf("failed to generate csrf token: %w", err))
		return
	}
	page, err := renderConsentPage(c, req.Scopes, csrfToken, req)
	if err != nil {
		a.plainError(w, r, err)
		return
	}
	pending := &store.Pending{
		Request:   req,
		CSRFToken: csrfToken,
		Subject:   subject,
	}
	if err := a.savePending(w, r, pending); err != nil {
		a.plainError(w, r, err)
		return
	}

	a.metrics.outcomes.WithLabelValues(outcomeConsentPrompt).Inc()
	logging.FromRequest(r).Info("rendering consent screen")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
	if _, err := w.Write([]byte(page)); err != nil {
		logging.FromRequest(r).WithError(err).Error("failed to write consent page")
	}
}
