package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPMetricsMiddleware collects HTTP metrics for Prometheus
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		wrapped := &responseWriterMetrics{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordHTTPRequest(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(startTime).Seconds(), wrapped.written)
	})
}

type responseWriterMetrics struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriterMetrics) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriterMetrics) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriterMetrics) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// normalizePath normalizes URL paths to avoid high cardinality in metrics
func normalizePath(path string) string {
	if path == "/" {
		return "/"
	}
	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "/health", path == "/ready", path == "/metrics":
		return path
	case path == "/api/v1/assets", path == "/api/v1/refresh", path == "/api/v1/status", path == "/api/v1/stream":
		return path
	case strings.HasPrefix(path, "/api/v1/assets/"):
		return "/api/v1/assets/{id}"
	case strings.HasPrefix(path, "/swagger"):
		return "/swagger"
	case strings.HasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	default:
		return "/unknown"
	}
}
