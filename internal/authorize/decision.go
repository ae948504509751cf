package authorize

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

const (
	consentWriteTimeout = 10 * time.Second
)

func (a *API) handleDecision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.plainError(w, r, oautherr.InvalidRequest("malformed form body"))
		return
	}

	pending, err := a.takePending(r)
	if err != nil {
		a.plainError(w, r, err)
		return
	}
	var sessionCSRF string
	if pending != nil {
		sessionCSRF = pending.CSRFToken
	}
	if !csrfTokenMatches(sessionCSRF, r.PostForm.Get(constants.ParamCSRF)) {
		logging.FromRequest(r).Warn("consent decision rejected: invalid or expired csrf token")
		a.plainError(w, r, oautherr.New(http.StatusForbidden, constants.ErrAccessDenied,
			"invalid or expired consent session"))
		return
	}

	req := pending.Request
	if r.PostForm.Get(constants.ParamClientID) != req.ClientID ||
		r.PostForm.Get(constants.ParamRedirectURI) != req.RedirectURI {
		a.plainError(w, r, oautherr.InvalidRequest("consent form does not match the pending authorization"))
		return
	}

	c, err := client.ResolveWithRedirect(r.Context(), a.clients, req.ClientID, req.RedirectURI)
	if err != nil {
		a.plainError(w, r, err)
		return
	}
	l := logging.FromRequest(r).WithFields(logrus.Fields{
		"clientID": c.ID,
		"subject":  pending.Subject,
	})
	r = logging.IntoRequest(r, l)

	if r.PostForm.Get(constants.ParamDecision) != constants.DecisionAllow {
		a.metrics.decisions.WithLabelValues(constants.DecisionDeny).Inc()
		l.Info("user denied consent")
		a.redirectError(w, r, req, oautherr.AccessDenied("the user denied the request"))
		return
	}

	p := a.authenticate(r)
	if p == nil || p.Subject != pending.Subject {
		a.plainError(w, r, oautherr.LoginRequired("the sign-in session ended, restart the authorization"))
		return
	}

	a.metrics.decisions.WithLabelValues(constants.DecisionAllow).Inc()
	l.Info("user granted consent")
	if !a.issueCode(w, r, c, req, p) {
		return
	}
	a.rememberConsentAsync(r, c.ID, p.Subject, req.Scopes)
}

// rememberConsentAsync records the grant without holding up the response.
// Failures are only logged.
func (a *API) rememberConsentAsync(r *http.Request, clientID, subject string, scopes []string) {
	l := logging.FromRequest(r)
	ctx := context.WithoutCancel(r.Context())
	now := a.now()
	ttl := a.oauth.ConsentMemory()

	a.background.Add(1)
	go func() {
		defer a.background.Done()
		ctx, cancel := context.WithTimeout(ctx, consentWriteTimeout)
		defer cancel()
		if err := store.RememberConsent(ctx, a.consents, clientID, subject, scopes, now, ttl); err != nil {
			l.WithError(err).Error("failed to remember consent")
			return
		}
		l.Debug("consent remembered")
	}()
}
