package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ticker cache service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticker_cache_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticker_cache_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Mirror backend metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_mirror_operations_total",
			Help: "Total number of snapshot mirror operations",
		},
		[]string{"operation", "result"}, // operation: get/set/delete, result: hit/miss/success/error
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticker_cache_mirror_keys",
			Help: "Number of keys currently held by the mirror backend",
		},
		[]string{"cache_type"},
	)

	// Upstream API metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_external_api_requests_total",
			Help: "Total number of upstream ticker API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticker_cache_external_api_request_duration_seconds",
			Help:    "Upstream ticker API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_external_api_retries_total",
			Help: "Total number of upstream retry attempts",
		},
		[]string{"service", "endpoint", "attempt"},
	)

	// Cache metrics
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_refreshes_total",
			Help: "Refresh calls by outcome",
		},
		[]string{"outcome"}, // fetched/throttled/failed
	)

	RefreshFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_refresh_failures_total",
			Help: "Failed refresh attempts by failure kind",
		},
		[]string{"kind"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticker_cache_refresh_duration_seconds",
			Help:    "Duration of refresh attempts that reached the upstream",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_lookups_total",
			Help: "Lookups by result",
		},
		[]string{"result"}, // hit/miss
	)

	SnapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticker_cache_snapshot_records",
			Help: "Number of records in the published snapshot",
		},
	)

	SnapshotFetchedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticker_cache_snapshot_fetched_timestamp_seconds",
			Help: "Unix time of the last successful fetch",
		},
	)

	SnapshotAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticker_cache_snapshot_age_seconds",
			Help: "Age of the published snapshot as seen by the poller",
		},
	)

	AssetPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticker_cache_asset_price",
			Help: "Current price of each tracked asset in the target currency",
		},
		[]string{"id", "currency"},
	)

	AssetAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticker_cache_asset_available",
			Help: "Consumer-side availability of each tracked asset (1=available)",
		},
		[]string{"id"},
	)

	// Stream metrics
	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticker_cache_stream_clients",
			Help: "Connected websocket stream clients",
		},
	)

	StreamDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticker_cache_stream_drops_total",
			Help: "Snapshot updates dropped because a client send buffer was full",
		},
	)

	// Rate limiting metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_cache_rate_limit_requests_total",
			Help: "Requests checked by the inbound rate limiter",
		},
		[]string{"result"}, // allowed/limited
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticker_cache_application_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheOperation records mirror backend operation metrics
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordExternalAPICall records upstream call metrics
func RecordExternalAPICall(service, endpoint string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(duration)
}

// RecordRateLimitResult records an inbound rate limiter decision
func RecordRateLimitResult(allowed bool) {
	result := "limited"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// RecordExternalAPIRetry records upstream retry attempts
func RecordExternalAPIRetry(service, endpoint string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordRefresh records the outcome of one Refresh call
func RecordRefresh(outcome string) {
	RefreshesTotal.WithLabelValues(outcome).Inc()
}

// RecordRefreshFailure records a failed attempt by kind
func RecordRefreshFailure(kind string) {
	RefreshFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordLookup records a lookup hit or miss
func RecordLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	LookupsTotal.WithLabelValues(result).Inc()
}

// UpdateSnapshot updates the published snapshot gauges
func UpdateSnapshot(records int, fetchedAtUnix float64) {
	SnapshotRecords.Set(float64(records))
	SnapshotFetchedTimestamp.Set(fetchedAtUnix)
}

// UpdateSnapshotAge updates the snapshot age gauge
func UpdateSnapshotAge(seconds float64) {
	SnapshotAgeSeconds.Set(seconds)
}

// UpdateAssetPrice updates the price gauge of one asset
func UpdateAssetPrice(id, currency string, price float64) {
	AssetPrice.WithLabelValues(id, currency).Set(price)
}

// UpdateAssetAvailability updates the consumer-side availability gauge
func UpdateAssetAvailability(id string, available bool) {
	v := 0.0
	if available {
		v = 1.0
	}
	AssetAvailable.WithLabelValues(id).Set(v)
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, goVersion string) {
	ApplicationInfo.WithLabelValues(version, goVersion).Set(1)
}
