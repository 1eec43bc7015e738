package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airtraffic/statboard/internal/auth"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	limited := NewRateLimiter(0.001, 1).Middleware(okHandler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sql", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("10.0.0.1:1000"); code != http.StatusOK {
		t.Errorf("Expected first request to pass, got %d", code)
	}
	if code := send("10.0.0.1:2000"); code != http.StatusTooManyRequests {
		t.Errorf("Expected second request from the same IP to be limited, got %d", code)
	}
	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("Expected other IP to pass, got %d", code)
	}
}

func TestAdminAuth(t *testing.T) {
	logging.SetLogger(zap.NewNop().Sugar())
	signer := common.NewTokenSigner([]byte("secret"))
	admin, _ := signer.Issue("ops", constants.RoleAdmin, time.Hour)
	viewer, _ := signer.Issue("dash", constants.RoleViewer, time.Hour)

	var seen string
	protected := AdminAuth(signer, auth.ActionInvalidateCache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := auth.GetUserClaims(r.Context()); c != nil {
			seen = c.UserID()
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"viewer", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/cache", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
	if seen != "ops" {
		t.Errorf("Expected claims for ops on the context, got %q", seen)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var fromCtx string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if fromCtx != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected the caller's id to be kept, got %q / %q", fromCtx, rr.Header().Get("X-Request-ID"))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if fromCtx == "" || fromCtx == "abc-123" {
		t.Errorf("Expected a fresh id, got %q", fromCtx)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	logging.SetLogger(zap.NewNop().Sugar())
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/api/v1/tables/{table}", okHandler)

	for _, table := range []string{"total", "domestic"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tables/"+table, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/tables/{table}", http.MethodGet, "200"))
	if got != 2 {
		t.Errorf("Expected 2 requests on the route pattern, got %v", got)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/api/v1/tables/total":                      "/api/v1/tables/total",
		"/api/v1/queries/42":                        "/api/v1/queries/{id}",
		"/x/0f8fad5b-d9cb-469f-a165-70867728950e/y": "/x/{id}/y",
	}
	for in, want := range tests {
		if got := NormalizeEndpoint(in); got != want {
			t.Errorf("NormalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
