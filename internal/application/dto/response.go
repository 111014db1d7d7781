package dto

import (
	"time"

	"ticker-cache-service/internal/domain/entities"
)

// AssetResponse represents one tracked asset as served by the cache
// @Description Normalized ticker record plus its freshness
type AssetResponse struct {
	entities.AssetRecord
	// False when never fetched or older than stale_after
	Available bool `json:"available" example:"true"`
	// Fetch time of the snapshot the record comes from
	LastUpdated *time.Time `json:"last_updated,omitempty" example:"2024-05-01T10:00:00Z"`
}

// AssetsResponse represents the response from /api/v1/assets
// @Description Every tracked asset from the current snapshot
type AssetsResponse struct {
	Currency    string          `json:"currency" example:"USD"`
	LastUpdated *time.Time      `json:"last_updated,omitempty" example:"2024-05-01T10:00:00Z"`
	Assets      []AssetResponse `json:"assets"`
	// Requested ids absent from the snapshot
	Missing []string `json:"missing,omitempty" example:"DOGE"`
}

// RefreshResponse represents the result of POST /api/v1/refresh
// @Description Outcome of a throttled refresh
type RefreshResponse struct {
	Outcome             string     `json:"outcome" example:"throttled" enums:"fetched,throttled,failed"`
	LastUpdated         *time.Time `json:"last_updated,omitempty" example:"2024-05-01T10:00:00Z"`
	NextEligibleRefresh *time.Time `json:"next_eligible_refresh,omitempty" example:"2024-05-01T11:00:00Z"`
	Error               string     `json:"error,omitempty" example:"upstream returned non-success status"`
	FailureKind         string     `json:"failure_kind,omitempty" example:"status" enums:"transport,status,payload,unknown"`
}

// FailureResponse describes the last failed refresh
type FailureResponse struct {
	Kind        string     `json:"kind" example:"transport"`
	Error       string     `json:"error" example:"upstream transport failure"`
	AttemptedAt time.Time  `json:"attempted_at" example:"2024-05-01T10:00:00Z"`
	DurationMs  int64      `json:"duration_ms" example:"1200"`
	StaleSince  *time.Time `json:"stale_since,omitempty" example:"2024-05-01T09:00:00Z"`
}

// StatusResponse represents the response from /api/v1/status
// @Description Diagnostic view of the throttled cache
type StatusResponse struct {
	TrackedIDs          []string         `json:"tracked_ids" example:"BTC,ETH"`
	Currency            string           `json:"currency" example:"USD"`
	ThrottleInterval    string           `json:"throttle_interval" example:"1h0m0s"`
	LastAttempt         *time.Time       `json:"last_attempt,omitempty"`
	LastUpdated         *time.Time       `json:"last_updated,omitempty"`
	NextEligibleRefresh *time.Time       `json:"next_eligible_refresh,omitempty"`
	Records             int              `json:"records" example:"2"`
	LastFailure         *FailureResponse `json:"last_failure,omitempty"`
}

// StreamMessage is pushed to websocket clients after every new snapshot
type StreamMessage struct {
	Type      string                 `json:"type" example:"snapshot"`
	Currency  string                 `json:"currency" example:"USD"`
	FetchedAt time.Time              `json:"fetched_at"`
	Assets    []entities.AssetRecord `json:"assets"`
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error" example:"ASSET_NOT_FOUND" validate:"required"`            // Main error message
	Message string `json:"message,omitempty" example:"asset DOGE is not in the snapshot"` // Detailed error description
	Code    string `json:"code,omitempty" example:"404"`                                  // HTTP error code or internal code
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" validate:"required" enums:"healthy,degraded,unhealthy"` // Overall service status
	Timestamp time.Time         `json:"timestamp" example:"2023-12-01T10:30:00Z" validate:"required"`                    // When the health check was performed
	Services  map[string]string `json:"services,omitempty" example:"cache:healthy,upstream:healthy"`                     // Individual service statuses
}

// NewErrorResponse creates a new error response
func NewErrorResponse(error string, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
	}
}

// NewErrorResponseWithCode creates an error response with code
func NewErrorResponseWithCode(error string, message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}
