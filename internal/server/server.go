package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intrafind/ihub-apps-sub004/internal/config"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
)

const (
	pathHealthz = "/healthz"
	pathReadyz  = "/readyz"
	pathMetrics = "/metrics"

	readinessTimeout = 2 * time.Second
)

// ReadinessCheck reports whether the backing stores can serve requests.
type ReadinessCheck func(ctx context.Context) error

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if r.statusCode == 0 {
		r.statusCode = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) getStatusCode() int {
	if r.statusCode == 0 {
		return http.StatusOK
	}
	return r.statusCode
}

// New wraps api with request logging, request metrics and the health,
// readiness and metrics endpoints.
func New(conf *config.ServerConfig, api http.Handler, ready ReadinessCheck,
	promRegisterer prometheus.Registerer, promGatherer prometheus.Gatherer) *http.Server {

	promHandler := promhttp.HandlerFor(promGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	requestDurationSecs := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
	}, []string{"host", "method", "path", "status"})
	promRegisterer.MustRegister(requestDurationSecs)

	handler := logging.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		sr := &statusRecorder{ResponseWriter: w}
		defer func() {
			status := fmt.Sprintf("%d", sr.getStatusCode())
			requestDurationSecs.
				WithLabelValues(r.Host, r.Method, r.URL.Path, status).
				Observe(time.Since(t).Seconds())
		}()
		w = sr

		switch r.URL.Path {
		case pathHealthz:
			w.WriteHeader(http.StatusOK)
		case pathReadyz:
			if ready != nil {
				ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
				defer cancel()
				if err := ready(ctx); err != nil {
					logging.FromRequest(r).WithError(err).Warn("readiness check failed")
					http.Error(w, "not ready", http.StatusServiceUnavailable)
					return
				}
			}
			w.WriteHeader(http.StatusOK)
		case pathMetrics:
			promHandler.ServeHTTP(w, r)
		default:
			api.ServeHTTP(w, r)
		}
	}))

	return &http.Server{
		Addr:              conf.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
