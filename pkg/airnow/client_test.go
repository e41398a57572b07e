package airnow

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"aqiscraper/pkg/config"
	errs "aqiscraper/pkg/errors"
	"aqiscraper/pkg/logger"
	"aqiscraper/pkg/ratelimit"
	"aqiscraper/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

var testDay = time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, baseURL string, log logger.Logger) *Client {
	t.Helper()
	cfg := config.DefaultConfig().AirNow
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.RequestTimeout = 2 * time.Second

	return NewClient(&cfg, retry.ConnectPolicy(3, time.Millisecond, 2, log), nil, log)
}

func TestFetchSuccess(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[ {"DateObserved": "2022-06-15 ", "AQI": 31} ]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, logger.NewTestLogger())
	res := client.Fetch(context.Background(), "02119", testDay)

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure)
	assert.Equal(t, `[{"DateObserved":"2022-06-15 ","AQI":31}]`, string(res.Payload))

	require.NotNil(t, got)
	q := got.URL.Query()
	assert.Equal(t, "application/json", q.Get("format"))
	assert.Equal(t, "02119", q.Get("zipCode"))
	assert.Equal(t, "2022-06-15T00-0000", q.Get("date"))
	assert.Equal(t, "25", q.Get("distance"))
	assert.Equal(t, "test-key", q.Get("API_KEY"))
	assert.Equal(t, http.MethodGet, got.Method)
}

func TestFetchEmptyArrayIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	res := newTestClient(t, server.URL, nil).Fetch(context.Background(), "02109", testDay)
	require.True(t, res.OK())
	assert.Equal(t, "[]", string(res.Payload))
}

func TestFetchHTTPStatusNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	res := newTestClient(t, server.URL, log).Fetch(context.Background(), "02109", testDay)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindHTTPStatus, res.Failure.Kind)
	assert.Equal(t, http.StatusInternalServerError, res.Failure.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	warnings := log.GetMessagesByLevel("WARN")
	require.NotEmpty(t, warnings)
	last := warnings[len(warnings)-1]
	assert.Equal(t, "fetch failed", last.Message)
	assert.Equal(t, "02109", last.Fields["zip_code"])
	assert.Equal(t, "2022-06-15", last.Fields["date"])
	assert.Equal(t, "http_status", last.Fields["kind"])
}

func TestFetchConnectionFailureRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, "http://airnow.test/aq/observation/zipCode/historical", nil)
	client.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	})

	res := client.Fetch(context.Background(), "02109", testDay)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindConnection, res.Failure.Kind)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "one attempt plus three retries")
}

func TestFetchConnectionRecovers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"AQI":5}]`))
	}))
	defer server.Close()

	var calls int32
	client := newTestClient(t, server.URL, nil)
	base := http.DefaultTransport
	client.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
		}
		return base.RoundTrip(req)
	})

	res := client.Fetch(context.Background(), "02109", testDay)
	require.True(t, res.OK())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchClosedServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := newTestClient(t, url, nil).Fetch(context.Background(), "02109", testDay)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindConnection, res.Failure.Kind)
}

func TestFetchTimeoutNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	client.httpClient.Timeout = 50 * time.Millisecond

	res := client.Fetch(context.Background(), "02109", testDay)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindTimeout, res.Failure.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	res := newTestClient(t, server.URL, nil).Fetch(context.Background(), "02109", testDay)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindOther, res.Failure.Kind)
	assert.Nil(t, res.Payload)
}

func TestFetchLogsDoNotLeakAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	log := logger.NewTestLogger()
	newTestClient(t, url, log).Fetch(context.Background(), "02109", testDay)

	for _, msg := range log.GetMessages() {
		for _, v := range msg.Fields {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "test-key")
			}
		}
	}
}

type countingLimiter struct {
	waits int32
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	atomic.AddInt32(&l.waits, 1)
	return nil
}

func TestFetchWaitsOnLimiterOncePerFetch(t *testing.T) {
	limiter := &countingLimiter{}
	cfg := config.DefaultConfig().AirNow
	cfg.BaseURL = "http://airnow.test/historical"
	calls := int32(0)
	client := NewClient(&cfg, retry.ConnectPolicy(2, time.Millisecond, 2, nil), limiter, nil)
	client.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	})

	client.Fetch(context.Background(), "02109", testDay)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&limiter.waits))
}

func TestFetchDefaultConnectBackoffSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("waits through the full backoff schedule")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	refused := server.URL
	server.Close()

	cfg := config.DefaultConfig()
	cfg.AirNow.BaseURL = refused
	cfg.AirNow.APIKey = "test-key"
	policy := retry.ConnectPolicy(cfg.Retry.ConnectRetries, cfg.Retry.BackoffBase, cfg.Retry.BackoffMultiplier, nil)
	client := NewClient(&cfg.AirNow, policy, ratelimit.NewRequestLimiter(cfg.RateLimit.RequestsPerHour), nil)

	start := time.Now()
	res := client.Fetch(context.Background(), "02109", testDay)
	elapsed := time.Since(start)

	require.False(t, res.OK())
	assert.Equal(t, errs.KindConnection, res.Failure.Kind)
	// 0.5s + 1s + 2s between the four attempts
	assert.GreaterOrEqual(t, elapsed, 3500*time.Millisecond)
	assert.Less(t, elapsed, 5*time.Second)
}
