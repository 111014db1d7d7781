package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/infrastructure/logging"
)

// writeJSONResponse writes a JSON response preserving the request context
func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			"status_code": statusCode,
		})
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSONResponse(ctx, w, statusCode, dto.NewErrorResponse(errorCode, message))
}
