package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"ticker-cache-service/internal/infrastructure/logging"
)

// LoggingMiddleware complements RequestTracingMiddleware with debug details
// and a warning for request patterns that look like probing.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers":        extractImportantHeaders(r),
			"query":          r.URL.RawQuery,
			"content_length": r.ContentLength,
		})

		if isSuspiciousRequest(r) {
			logging.HTTP().Warn(ctx, "Suspicious request pattern", logging.Fields{
				logging.FieldHTTPPath:     r.URL.Path,
				logging.FieldHTTPRemoteIP: getClientIP(r),
			})
		}

		next.ServeHTTP(w, r)
	})
}

// extractImportantHeaders extracts relevant headers for logging
func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)

	// Nunca incluir la API key
	importantHeaders := []string{
		"Content-Type",
		"Accept",
		"Accept-Encoding",
		"Cache-Control",
		"Upgrade",
		"X-Forwarded-For",
		"X-Real-IP",
	}

	for _, header := range importantHeaders {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}

	return headers
}

var suspiciousPatterns = []string{
	"../",
	"<script",
	"select ",
	"union ",
	"drop ",
	"exec(",
	"eval(",
}

// isSuspiciousRequest detecta patrones sospechosos en las requests
func isSuspiciousRequest(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	query = strings.ToLower(query)

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return true
		}
	}

	// Content-Length inusualmente grande para una API de solo lectura
	return r.ContentLength > 1024*1024
}
