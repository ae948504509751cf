package authorize

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

const (
	sessionCookiePath = "/api/oauth"
)

// authenticate returns the principal behind the session token cookie, or nil
// when the cookie is absent or the token does not verify.
func (a *API) authenticate(r *http.Request) *sessiontoken.Principal {
	c, err := r.Cookie(a.session.TokenCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	p, err := a.verifier.Verify(r.Context(), c.Value, a.now())
	if err != nil {
		logging.FromRequest(r).WithError(err).Debug("session token rejected")
		return nil
	}
	return p
}

func (a *API) sessionID(r *http.Request) string {
	c, err := r.Cookie(a.session.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// ensureSession returns the OAuth session id of the browser, starting a new
// session when there is none.
func (a *API) ensureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if sid := a.sessionID(r); sid != "" {
		return sid, nil
	}
	sid, err := store.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.session.CookieName,
		Value:    sid,
		Path:     sessionCookiePath,
		MaxAge:   int(a.oauth.PendingTTL.Seconds()),
		HttpOnly: true,
		Secure:   !a.session.InsecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// savePending stores req in the OAuth session, replacing whatever flow the
// browser had in flight.
func (a *API) savePending(w http.ResponseWriter, r *http.Request, p *store.Pending) error {
	sid, err := a.ensureSession(w, r)
	if err != nil {
		return err
	}
	p.ExpiresAt = a.now().Add(a.oauth.PendingTTL)
	if err := a.sessions.PutPending(r.Context(), sid, p); err != nil {
		return fmt.Errorf("failed to store pending authorization: %w", err)
	}
	return nil
}

// takePending reads and deletes the pending authorization of the session. The
// entry is gone before the caller inspects it.
func (a *API) takePending(r *http.Request) (*store.Pending, error) {
	sid := a.sessionID(r)
	if sid == "" {
		return nil, nil
	}
	p, ok, err := a.sessions.GetPending(r.Context(), sid)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending authorization: %w", err)
	}
	if err := a.sessions.DeletePending(r.Context(), sid); err != nil {
		return nil, fmt.Errorf("failed to delete pending authorization: %w", err)
	}
	if !ok || !a.now().Before(p.ExpiresAt) {
		return nil, nil
	}
	return p, nil
}

func (a *API) discardPending(r *http.Request) {
	sid := a.sessionID(r)
	if sid == "" {
		return
	}
	if err := a.sessions.DeletePending(r.Context(), sid); err != nil {
		logging.FromRequest(r).WithError(err).Warn("failed to discard pending authorization")
	}
}

// csrfTokenMatches compares the token kept in the session with the submitted
// one in constant time. Both must be present.
func csrfTokenMatches(sessionToken, formToken string) bool {
	if sessionToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken), []byte(formToken)) == 1
}
