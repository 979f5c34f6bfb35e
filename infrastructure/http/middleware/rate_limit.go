package middleware

import (
	"net/http"
	"strings"

	"github.com/swairua/medplus/infrastructure/http/response"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/infrastructure/service/ratelimit"
)

// RateLimitMiddleware throttles mutation and login endpoints per client IP.
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimitService
	log     logger.Logger
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, log: log}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := getClientIP(r)
		allowed, err := m.limiter.Allow(r.Context(), clientIP)
		if err != nil {
			m.log.Error(r.Context(), "rate limit check failed", err, map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			// A broken limiter must not take the service down with it.
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			m.log.Warn(r.Context(), "rate limit exceeded", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimitFunc adapts RateLimit for HandlerFunc-based route
// registration, so individual routes can opt in to throttling.
func (m *RateLimitMiddleware) RateLimitFunc(next http.HandlerFunc) http.HandlerFunc {
	return m.RateLimit(next).ServeHTTP
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
