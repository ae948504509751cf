package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/intrafind/ihub-apps-sub004/internal/config"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
)

func TestServer(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		readyErr        error
		expectedStatus  int
		expectAPICalled bool
	}{
		{
			name:           "healthz",
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "readyz",
			path:           "/readyz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "readyz with store down",
			path:           "/readyz",
			readyErr:       errors.New("redis unreachable"),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:            "api",
			path:            "/api/oauth/authorize",
			expectedStatus:  http.StatusTeapot,
			expectAPICalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			var apiCalled bool
			var requestLogger logrus.FieldLogger
			api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				apiCalled = true
				requestLogger = logging.FromRequest(r)
				w.WriteHeader(http.StatusTeapot)
			})
			ready := func(context.Context) error { return tt.readyErr }

			registry := prometheus.NewRegistry()
			server := New(&config.ServerConfig{Addr: ":8080"}, api, ready, registry, registry)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			server.Handler.ServeHTTP(rec, req)

			g.Expect(rec.Code).To(Equal(tt.expectedStatus))
			g.Expect(apiCalled).To(Equal(tt.expectAPICalled))
			g.Expect(rec.Header().Get("X-Request-ID")).ToNot(BeEmpty())
			if tt.expectAPICalled {
				entry, ok := requestLogger.(*logrus.Entry)
				g.Expect(ok).To(BeTrue())
				g.Expect(entry.Data["requestID"]).To(Equal(rec.Header().Get("X-Request-ID")))
			}
			g.Expect(server.Addr).To(Equal(":8080"))
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	g := NewWithT(t)

	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	registry := prometheus.NewRegistry()
	server := New(&config.ServerConfig{}, api, nil, registry, registry)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/oauth/authorize", nil))
	g.Expect(rec.Code).To(Equal(http.StatusFound))

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	body := rec.Body.String()
	g.Expect(body).To(ContainSubstring("http_request_duration_seconds"))
	g.Expect(body).To(ContainSubstring(`path="/api/oauth/authorize"`))
	g.Expect(body).To(ContainSubstring(`status="302"`))
}
