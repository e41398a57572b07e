package airnow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"aqiscraper/pkg/config"
	errs "aqiscraper/pkg/errors"
	"aqiscraper/pkg/logger"
	"aqiscraper/pkg/ratelimit"
	"aqiscraper/pkg/retry"
)

const userAgent = "aqiscraper/1.0"

// Result is the outcome of fetching one unit: exactly one of Payload and
// Failure is set
type Result struct {
	Payload []byte
	Failure *errs.Failure
}

// OK reports whether the fetch produced a payload
func (r Result) OK() bool {
	return r.Failure == nil
}

// Client fetches historical observations from AirNow
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	distance   int
	format     string
	policy     *retry.Policy
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a client from the airnow configuration section. policy
// decides which attempts are retried; limiter gates every fetch and may be nil.
func NewClient(cfg *config.AirNowConfig, policy *retry.Policy, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if policy == nil {
		policy = &retry.Policy{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = HistoricalObservationURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		distance: cfg.Distance,
		format:   cfg.Format,
		policy:   policy,
		limiter:  limiter,
		logger:   log.WithField("component", "airnow"),
	}
}

// Fetch retrieves the observation for locationID on date. Every failure is
// logged and returned in the Result; Fetch never panics on remote errors.
func (c *Client) Fetch(ctx context.Context, locationID string, date time.Time) Result {
	fields := map[string]interface{}{
		"zip_code": locationID,
		"date":     date.Format(time.DateOnly),
	}

	reqURL, err := BuildURL(c.baseURL, QueryParams{
		ZipCode:  locationID,
		Date:     date,
		Distance: c.distance,
		Format:   c.format,
		APIKey:   c.apiKey,
	})
	if err != nil {
		return c.fail(fields, &errs.Failure{Kind: errs.KindOther, Detail: err.Error(), Err: err})
	}

	// one limiter slot per fetch; retries follow the backoff schedule only
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(fields, errs.Classify(fmt.Errorf("request limiter: %w", err)))
		}
	}

	body, err := retry.DoWithResult(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return c.fail(fields, errs.Classify(err))
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return c.fail(fields, &errs.Failure{
			Kind:   errs.KindOther,
			Detail: fmt.Sprintf("response is not valid JSON: %v", err),
			Err:    err,
		})
	}

	c.logger.DebugWithFields("observation fetched", mergeFields(fields, map[string]interface{}{
		"bytes": compact.Len(),
	}))

	return Result{Payload: compact.Bytes()}
}

// get performs one attempt. Non-2xx responses become http_status failures.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", FormatJSON)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    RedactURL(reqURL),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(urlErr.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, errs.NewStatusFailure(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *Client) fail(fields map[string]interface{}, failure *errs.Failure) Result {
	logFields := mergeFields(fields, map[string]interface{}{
		"kind":   string(failure.Kind),
		"detail": RedactURL(failure.Detail),
	})
	if failure.StatusCode != 0 {
		logFields["status"] = failure.StatusCode
	}
	c.logger.WarnWithFields("fetch failed", logFields)

	return Result{Failure: failure}
}

func mergeFields(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
