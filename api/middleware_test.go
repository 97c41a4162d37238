package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/jurychain-api/api"
	"github.com/linesmerrill/jurychain-api/ratelimit"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`ok`))
})

func TestHealthCheckHandler(t *testing.T) {
	r := api.New()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive":true}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	api.SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rr.Header().Get("Referrer-Policy"))
	assert.Equal(t, "camera=(), microphone=(), geolocation=()", rr.Header().Get("Permissions-Policy"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
}

func TestOpsAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	h := api.OpsAuth("ops", string(hash))(okHandler)

	tests := []struct {
		name       string
		user, pass string
		noAuth     bool
		want       int
	}{
		{name: "valid credentials", user: "ops", pass: "s3cret", want: http.StatusOK},
		{name: "wrong password", user: "ops", pass: "nope", want: http.StatusUnauthorized},
		{name: "wrong user", user: "admin", pass: "s3cret", want: http.StatusUnauthorized},
		{name: "no credentials", noAuth: true, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/metrics", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestOpsAuthDisabledWithoutCredentials(t *testing.T) {
	rr := httptest.NewRecorder()
	api.OpsAuth("", "")(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTimeoutMiddleware(t *testing.T) {
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`late`))
	})

	rr := httptest.NewRecorder()
	api.TimeoutMiddleware(10*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/getCases", nil))
	close(release)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.Contains(t, rr.Body.String(), "Request timeout")
	assert.NotContains(t, rr.Body.String(), "late")
}

func TestTimeoutMiddlewareHandlerWritesHeadersAfterDeadline(t *testing.T) {
	for i := 0; i < 50; i++ {
		release := make(chan struct{})
		finished := make(chan struct{})
		late := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer close(finished)
			<-r.Context().Done()
			for j := 0; j < 50; j++ {
				w.Header().Set("Content-Type", "text/plain")
				w.Header().Set("X-Late", "true")
			}
			<-release
			w.WriteHeader(http.StatusInternalServerError)
		})

		rr := httptest.NewRecorder()
		api.TimeoutMiddleware(time.Millisecond)(late).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/getCases", nil))
		close(release)
		<-finished

		assert.Equal(t, http.StatusRequestTimeout, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Empty(t, rr.Header().Get("X-Late"))
	}
}

func TestTimeoutMiddlewareKeepsHandlerHeaders(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Case", "CASE-1")
		w.WriteHeader(http.StatusCreated)
	})
	noWrite := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Case", "CASE-2")
	})

	rr := httptest.NewRecorder()
	api.TimeoutMiddleware(time.Second)(h).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "CASE-1", rr.Header().Get("X-Case"))

	rr = httptest.NewRecorder()
	api.TimeoutMiddleware(time.Second)(noWrite).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "CASE-2", rr.Header().Get("X-Case"))
}

func TestTimeoutMiddlewareFastHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	api.TimeoutMiddleware(time.Second)(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestMetricsMiddlewareSetsRequestID(t *testing.T) {
	var seen string
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.HandleFunc("/api/v1/getCase/{case_id}", func(w http.ResponseWriter, r *http.Request) {
		seen = api.RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/getCase/CASE-1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/api/v1/getCase/CASE-2", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "upstream-id", seen)
}

func TestRequestIDOutsideRequest(t *testing.T) {
	assert.Equal(t, "", api.RequestID(context.Background()))
}

func TestRateLimit(t *testing.T) {
	c := clock.NewMock()
	limiter := ratelimit.NewMemoryLimiter(c, 0)
	h := api.RateLimit(limiter, c, "submit", 2, time.Minute, 0)(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/submitCase", nil)
		req.RemoteAddr = ip + ":5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	rr := send("10.0.0.1")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "too many requests")

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)

	c.Add(time.Minute)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
}

type failingLimiter struct{ err error }

func (f failingLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, f.err
}

func TestRateLimitLimiterErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/storeVerdict", nil)

	rr := httptest.NewRecorder()
	api.RateLimit(failingLimiter{errors.New("redis down")}, clock.NewMock(), "proof", 5, time.Minute, 0)(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	api.RateLimit(failingLimiter{ratelimit.ErrCapacityExceeded}, clock.NewMock(), "proof", 5, time.Minute, 0)(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name           string
		xff            []string
		trustedProxies int
		want           string
	}{
		{name: "peer address without proxies", want: "192.0.2.7"},
		{name: "forwarded header ignored without proxies", xff: []string{"203.0.113.9"}, want: "192.0.2.7"},
		{name: "one proxy takes the last hop", xff: []string{"6.6.6.6, 203.0.113.9"}, trustedProxies: 1, want: "203.0.113.9"},
		{name: "two proxies", xff: []string{"6.6.6.6, 203.0.113.9, 10.0.0.1"}, trustedProxies: 2, want: "203.0.113.9"},
		{name: "hops split over headers", xff: []string{"6.6.6.6", "203.0.113.9"}, trustedProxies: 1, want: "203.0.113.9"},
		{name: "too few hops", xff: []string{"203.0.113.9"}, trustedProxies: 2, want: "192.0.2.7"},
		{name: "missing header", trustedProxies: 1, want: "192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = "192.0.2.7:4321"
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, api.ClientIP(req, tt.trustedProxies))
		})
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	c := clock.NewMock()
	h := api.RateLimit(ratelimit.NewMemoryLimiter(c, 0), c, "submit", 5, time.Minute, 1)(okHandler)

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/api/v1/submitCase", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		// the client rotates the left-most entry; the router appends the real peer
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d, 198.51.100.4", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}
