package auth

import (
	"net"
	"net/http"

	"songbook/pkg/logger"
)

// Config holds the transport-level security settings. Authorization
// itself happens in the engine; this middleware only handles CORS,
// rate limiting and request logging.
type Config struct {
	RPS   float64
	Burst int
}

// Middleware wraps a handler with CORS echo, per-caller rate limiting
// and request logging.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	limiters := newLimiterPool(cfg.RPS, cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)

			// The songbook is meant to be embedded; echo the caller's origin.
			if origin := r.Header.Get("Origin"); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept,Content-Type,Cookie")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			id := r.URL.Query().Get("key")
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = clientIP(r)
			}
			if !limiters.Allow(id) {
				logger.Warn("rate_limited", "path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
