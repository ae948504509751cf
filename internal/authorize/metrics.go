package authorize

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeLoginRedirect = "login_redirect"
	outcomeConsentPrompt = "consent_prompt"
	outcomeCodeIssued    = "code_issued"
	outcomeRedirectError = "redirect_error"
	outcomePlainError    = "plain_error"
)

type metrics struct {
	outcomes  *prometheus.CounterVec
	decisions *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_authorize_outcomes_total",
			Help: "Outcomes of authorization endpoint requests",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_consent_decisions_total",
			Help: "Consent decisions by kind",
		}, []string{"decision"}),
	}
	reg.MustRegister(m.outcomes, m.decisions)
	return m
}
