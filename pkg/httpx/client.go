package httpx

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// userAgent mimics a standard browser client; several platforms reject
// requests with default Go user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Backoff bases. 429 gets a longer wait than a transport failure because
// rate limits usually clear on the order of seconds.
const (
	rateLimitBackoff = 1000 * time.Millisecond
	transportBackoff = 500 * time.Millisecond
)

// Config controls retry and throttling behavior for a Client.
type Config struct {
	// MaxAttempts bounds retries per request. Kept small and linear so a
	// struggling platform cannot stall an interactive search. Default 3.
	MaxAttempts int
	// Timeout applies to each individual attempt. Default 30s.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls to one platform.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// Client is a retrying HTTP client shared by all platform adapters.
// Retry policy:
//   - transport-level success with 2xx/3xx: returned immediately
//   - HTTP 429: wait 1000ms x attempt, retry up to MaxAttempts
//   - other non-success status: fail immediately with *SourceError
//   - transport error: wait 500ms x attempt, retry up to MaxAttempts
//   - budget exhausted: ErrRetriesExhausted, with no wait after the
//     final attempt
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	limiter     *rate.Limiter
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxAttempts: cfg.MaxAttempts,
		limiter:     limiter,
	}
}

// Do executes req with the retry policy. On retry, the request body is
// reset via req.GetBody if available. The caller owns the response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("reset request body for retry: %w", err)
			}
			req.Body = body
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt == c.maxAttempts {
				break
			}
			log.Debug().Err(err).Str("url", req.URL.String()).Int("attempt", attempt).
				Msg("transport error, will retry")
			if err := sleep(ctx, time.Duration(attempt)*transportBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			lastErr = &SourceError{Status: resp.StatusCode, URL: req.URL.String()}
			if attempt == c.maxAttempts {
				break
			}
			log.Debug().Str("url", req.URL.String()).Int("attempt", attempt).
				Msg("rate limited, backing off")
			if err := sleep(ctx, time.Duration(attempt)*rateLimitBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= http.StatusBadRequest {
			drain(resp)
			return nil, &SourceError{Status: resp.StatusCode, URL: req.URL.String()}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := ReadBody(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// GetBytes issues a GET request and returns the decoded response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ReadBody(resp)
}

// ReadBody reads an HTTP response body, decompressing gzip and brotli
// encodings.
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		var err error
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer reader.Close()
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
