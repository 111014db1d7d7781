package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/infrastructure/config"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

// RateLimitMiddleware limits requests per client IP
type RateLimitMiddleware struct {
	limiter   *RateLimiterCollection
	skipPaths map[string]bool
	enabled   bool
}

// NewRateLimitMiddleware builds the middleware from config; probes and metrics are never limited
func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		skipPaths: map[string]bool{
			"/health":  true,
			"/ready":   true,
			"/metrics": true,
		},
		enabled: cfg.Enabled,
	}
	if cfg.Enabled {
		m.limiter = NewRateLimiterCollection(cfg.Capacity, cfg.RefillRate)
	}
	return m
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := getClientID(r)
		bucket := rlm.limiter.Bucket(clientID)
		allowed := bucket.Allow()
		metrics.RecordRateLimitResult(allowed)

		if !allowed {
			logging.Warn(r.Context(), "Rate limit exceeded", logging.Fields{
				"client_id":             clientID,
				logging.FieldHTTPPath:   r.URL.Path,
				logging.FieldHTTPMethod: r.Method,
			})
			rlm.writeRateLimitError(w, r, bucket)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(bucket.Tokens()))
		next.ServeHTTP(w, r)
	})
}

// getClientID prefers the first proxy-forwarded address, then the peer IP
func getClientID(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		return strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (rlm *RateLimitMiddleware) writeRateLimitError(w http.ResponseWriter, r *http.Request, bucket *TokenBucket) {
	retryAfter := int(math.Ceil(bucket.RetryAfter().Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	response := dto.NewErrorResponseWithCode("RATE_LIMIT_EXCEEDED",
		"Rate limit exceeded. Please slow down your requests.", strconv.Itoa(http.StatusTooManyRequests))
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.ErrorWithError(r.Context(), "Error encoding rate limit response", err, nil)
	}
}
