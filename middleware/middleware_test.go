package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecoChallengeAPI/internal/session"
)

func protected(t *testing.T, m *session.Manager) http.Handler {
	t.Helper()
	return SessionAuth(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetSession(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", claims.Subject)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestSessionAuth(t *testing.T) {
	m := session.NewManager("middleware-secret", time.Hour, "eco-test", session.NewMemoryRevocationStore())
	token, _, err := m.Issue(5)
	require.NoError(t, err)
	h := protected(t, m)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "5", rr.Header().Get("X-User"))
			} else {
				assert.Contains(t, rr.Body.String(), `"error"`)
			}
		})
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	h := BasicAuthMiddleware("prom", "scrape")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	req.SetBasicAuth("prom", "wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req.SetBasicAuth("prom", "scrape")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBasicAuthRejectsWhenUnconfigured(t *testing.T) {
	h := BasicAuthMiddleware("", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/challenges", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("2.2.2.2"), "buckets are per client")
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }
	rl.getLimiter("1.1.1.1")

	now = now.Add(4 * time.Minute)
	rl.getLimiter("2.2.2.2")
	rl.sweep()

	assert.NotContains(t, rl.visitors, "1.1.1.1")
	assert.Contains(t, rl.visitors, "2.2.2.2")
}

func TestMonitorMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware(zap.NewNop()))
	var label string
	r.HandleFunc("/challenges/{id}", func(w http.ResponseWriter, req *http.Request) {
		label = routeLabel(req)
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/challenges/12", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "/challenges/{id}", label)
}
