package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/infrastructure/config"
	"ticker-cache-service/internal/infrastructure/logging"
)

// AuthMiddleware protects the configured paths with a static API key
type AuthMiddleware struct {
	config config.AuthConfig
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(config config.AuthConfig) *AuthMiddleware {
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	return &AuthMiddleware{
		config: config,
	}
}

// Handler wraps the given handler with API key authentication
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !am.config.Enabled || !am.isProtectedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(am.config.HeaderName)
		if apiKey == "" {
			am.respondWithAuthError(w, r, "API key missing", "API_KEY_MISSING")
			return
		}

		if !am.isValidAPIKey(apiKey) {
			am.respondWithAuthError(w, r, "Invalid API key", "API_KEY_INVALID")
			return
		}

		logging.Debug(r.Context(), "API key authentication successful", logging.Fields{
			logging.FieldHTTPPath:     r.URL.Path,
			logging.FieldHTTPMethod:   r.Method,
			logging.FieldHTTPRemoteIP: getClientIP(r),
		})

		next.ServeHTTP(w, r)
	})
}

// isProtectedPath soporta rutas exactas y prefijos terminados en /
func (am *AuthMiddleware) isProtectedPath(path string) bool {
	for _, p := range am.config.ProtectedPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

func (am *AuthMiddleware) isValidAPIKey(providedKey string) bool {
	return subtle.ConstantTimeCompare([]byte(providedKey), []byte(am.config.APIKey)) == 1
}

func (am *AuthMiddleware) respondWithAuthError(w http.ResponseWriter, r *http.Request, message, code string) {
	logging.Warn(r.Context(), "API key authentication failed", logging.Fields{
		logging.FieldHTTPPath:      r.URL.Path,
		logging.FieldHTTPMethod:    r.Method,
		logging.FieldHTTPRemoteIP:  getClientIP(r),
		logging.FieldHTTPUserAgent: r.UserAgent(),
		"error_code":               code,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `APIKey header="`+am.config.HeaderName+`"`)
	w.WriteHeader(http.StatusUnauthorized)

	response := dto.NewErrorResponseWithCode("AUTHENTICATION_FAILED", message, code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.ErrorWithError(r.Context(), "Error encoding auth error response", err, nil)
	}
}
