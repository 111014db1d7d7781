package nomics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

const (
	DefaultBaseURL    = "https://api.nomics.com/v1"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	BaseBackoff       = 200 * time.Millisecond
	MaxBackoff        = 2 * time.Second

	serviceName    = "nomics"
	tickerEndpoint = "/currencies/ticker"
)

// Config configura el cliente REST
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration // por intento
	MaxRetries  uint
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	UserAgent   string
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = BaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = MaxBackoff
	}
	if c.UserAgent == "" {
		c.UserAgent = "ticker-cache-service/1.0"
	}
	return c
}

// RestClient implementa interfaces.TickerSource sobre la API REST de Nomics
type RestClient struct {
	cfg  Config
	http *resty.Client
}

// NewRestClient crea el cliente con un transport afinado para un único host
func NewRestClient(cfg Config) *RestClient {
	cfg = cfg.withDefaults()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := resty.New().
		SetTransport(transport).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	return &RestClient{cfg: cfg, http: client}
}

// FetchTickers obtiene los tickers de todos los ids en una sola llamada, con retry.
// Los errores envuelven un sentinel de failures para que el cache los clasifique.
func (c *RestClient) FetchTickers(ctx context.Context, req interfaces.TickerRequest) ([]entities.RawRecord, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w", failures.ErrTransport, ErrMissingAPIKey)
	}
	if len(req.IDs) == 0 {
		return []entities.RawRecord{}, nil
	}

	var records []entities.RawRecord
	err := retry.Do(
		func() error {
			reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()

			out, reqErr := c.doTickerRequest(reqCtx, req)
			if reqErr != nil {
				return reqErr
			}
			records = out
			return nil
		},
		retry.Attempts(c.cfg.MaxRetries),
		retry.Delay(c.cfg.BaseBackoff),
		retry.MaxDelay(c.cfg.MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			metrics.RecordExternalAPIRetry(serviceName, tickerEndpoint, int(n+1))
			logging.Warn(ctx, "Nomics API retry attempt", logging.Fields{
				"service":      serviceName,
				"attempt":      n + 1,
				"max_attempts": c.cfg.MaxRetries,
				"ids_count":    len(req.IDs),
				"error":        err.Error(),
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers for %d ids: %w", len(req.IDs), err)
	}
	return records, nil
}

// doTickerRequest hace un único intento HTTP
func (c *RestClient) doTickerRequest(ctx context.Context, req interfaces.TickerRequest) ([]entities.RawRecord, error) {
	extLog := logging.ExternalAPI()
	extLog.RequestStarted(ctx, serviceName, tickerEndpoint, http.MethodGet)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      c.cfg.APIKey,
			"ids":      strings.Join(req.IDs, ","),
			"interval": strings.Join(req.Intervals, ","),
			"convert":  req.Currency,
		}).
		Get(tickerEndpoint)
	elapsed := time.Since(start)
	elapsedMs := float64(elapsed.Nanoseconds()) / 1e6

	if err != nil {
		extLog.RequestFailed(ctx, serviceName, tickerEndpoint, 0, err, elapsedMs)
		metrics.RecordExternalAPICall(serviceName, tickerEndpoint, 0, elapsed.Seconds())
		return nil, fmt.Errorf("%w: %w: %w", failures.ErrTransport, ErrRetryableRequest, err)
	}

	status := resp.StatusCode()
	metrics.RecordExternalAPICall(serviceName, tickerEndpoint, status, elapsed.Seconds())
	extLog.RequestCompleted(ctx, serviceName, tickerEndpoint, status, elapsedMs)

	switch {
	case status == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %w: HTTP %d (rate limited)", failures.ErrUpstreamStatus, ErrRetryableRequest, status)
	case status >= 500:
		return nil, fmt.Errorf("%w: %w: HTTP %d (server error)", failures.ErrUpstreamStatus, ErrRetryableRequest, status)
	case status < 200 || status > 299:
		return nil, fmt.Errorf("%w: %w: HTTP %d", failures.ErrUpstreamStatus, ErrNonRetryable, status)
	}

	records, err := DecodeTickers(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNonRetryable, err)
	}
	return records, nil
}

// DecodeTickers parses a ticker body. The top level must be a JSON array of
// objects; numbers are kept as json.Number.
func DecodeTickers(body []byte) ([]entities.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", failures.ErrMalformedPayload, err)
	}
	items, ok := top.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, want array", failures.ErrMalformedPayload, jsonKind(top))
	}

	records := make([]entities.RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %s, want object", failures.ErrMalformedPayload, i, jsonKind(item))
		}
		records = append(records, entities.RawRecord(obj))
	}
	return records, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	return errors.Is(err, ErrRetryableRequest)
}

var _ interfaces.TickerSource = (*RestClient)(nil)
