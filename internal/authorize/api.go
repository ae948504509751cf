// Package authorize implements the OAuth 2.0 authorization endpoint with PKCE
// and its consent decision handler.
package authorize

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/config"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

// Deps are the collaborators of the authorization endpoint.
type Deps struct {
	Clients  client.Store
	Codes    store.CodeStore
	Consents store.ConsentStore
	Sessions store.SessionStore
	Verifier sessiontoken.Verifier

	OAuth   *config.OAuthConfig
	Session *config.SessionConfig

	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Now defaults to time.Now.
	Now func() time.Time
}

// API serves the authorization and decision endpoints.
type API struct {
	clients  client.Store
	codes    store.CodeStore
	consents store.ConsentStore
	sessions store.SessionStore
	verifier sessiontoken.Verifier

	oauth   *config.OAuthConfig
	session *config.SessionConfig
	metrics *metrics
	now     func() time.Time

	router     http.Handler
	background sync.WaitGroup
}

// NewAPI wires the endpoints on a chi router.
func NewAPI(d Deps) *API {
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	a := &API{
		clients:  d.Clients,
		codes:    d.Codes,
		consents: d.Consents,
		sessions: d.Sessions,
		verifier: d.Verifier,
		oauth:    d.OAuth,
		session:  d.Session,
		metrics:  newMetrics(reg),
		now:      now,
	}

	r := chi.NewRouter()
	r.Use(recoverer, noStore)
	r.Get(constants.PathAuthorize, a.handleAuthorize)
	r.Post(constants.PathAuthorizeDecision, a.handleDecision)
	a.router = r
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Wait blocks until pending background consent writes have finished.
func (a *API) Wait() {
	a.background.Wait()
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Vary", "Cookie")
		next.ServeHTTP(w, r)
	})
}

// recoverer turns a panic in a handler into a plain server_error response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromRequest(r).WithField("panic", rec).Error("panic while handling authorization request")
			oautherr.WritePlain(w, r, oautherr.ServerError("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}

func (a *API) plainError(w http.ResponseWriter, r *http.Request, err error) {
	a.metrics.outcomes.WithLabelValues(outcomePlainError).Inc()
	oautherr.WritePlain(w, r, err)
}

func (a *API) redirectError(w http.ResponseWriter, r *http.Request, req *store.AuthorizationRequest, err error) {
	a.metrics.outcomes.WithLabelValues(outcomeRedirectError).Inc()
	oautherr.Redirect(w, r, req.RedirectURI, req.State, err)
}
