package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/guileb/circular-integration/pkg/hasher"
)

func LoggingMiddleware(next http.Handler) http.Handler {
	logger := zap.L()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		next.ServeHTTP(w, r)
	})
}

// BasicAuth guards the api with a bcrypt password hash. An empty hash
// disables the check (trusted LAN deployments).
func BasicAuth(passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, password, ok := r.BasicAuth()
			if !ok || !hasher.PasswordCorrect(password, passwordHash) {
				w.Header().Set("WWW-Authenticate", `Basic realm="circular"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
