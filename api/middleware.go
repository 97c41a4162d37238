package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Response headers applied to every route
var securityHeaders = map[string]string{
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
}

// SecurityHeaders sets the browser hardening headers on every response
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// OpsAuth guards operator routes with basic auth. The password is checked against a
// bcrypt hash. When no user is configured the routes are left open.
func OpsAuth(user, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if user == "" || passwordHash == "" {
			return next
		}
		expectedUserHash := sha256.Sum256([]byte(user))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if ok {
				usernameHash := sha256.Sum256([]byte(username))
				usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUserHash[:]) == 1
				passwordErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
				if usernameMatch && passwordErr == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			zap.S().Errorw("unauthorized",
				"url", r.URL,
				"requestId", RequestID(r.Context()))
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
		})
	}
}
