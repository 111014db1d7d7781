package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/ready/", "/ready"},
		{"/api/v1/assets", "/api/v1/assets"},
		{"/api/v1/assets/BTC", "/api/v1/assets/{id}"},
		{"/api/v1/assets/eth/", "/api/v1/assets/{id}"},
		{"/api/v1/stream", "/api/v1/stream"},
		{"/api/v1/other", "/api/v1/*"},
		{"/swagger/index.html", "/swagger"},
		{"/favicon.ico", "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestHTTPMetricsMiddleware_RecordsStatus(t *testing.T) {
	handler := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/assets/{id}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assets/XYZ", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordLookup(t *testing.T) {
	hit := LookupsTotal.WithLabelValues("hit")
	miss := LookupsTotal.WithLabelValues("miss")
	h0, m0 := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	RecordLookup(true)
	RecordLookup(false)
	RecordLookup(false)

	assert.Equal(t, h0+1, testutil.ToFloat64(hit))
	assert.Equal(t, m0+2, testutil.ToFloat64(miss))
}
