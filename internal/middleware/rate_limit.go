package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/evyataryagoni/voterlocation/internal/limiter"
	"github.com/evyataryagoni/voterlocation/internal/metrics"
	"github.com/evyataryagoni/voterlocation/internal/models"
)

// RateLimitExceededMessage is the JSON error returned with 429
const RateLimitExceededMessage = "Rate limit exceeded. Please try again later."

// RateLimitMiddleware enforces rate limiting per client IP (returns 429 when exceeded)
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lim.Allow(ClientKey(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if m != nil {
				m.RateLimitedTotal.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: RateLimitExceededMessage})
		})
	}
}

// ClientKey identifies the client for rate limiting.
// Priority: X-Real-IP > first X-Forwarded-For entry > RemoteAddr host
func ClientKey(r *http.Request) string {
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
