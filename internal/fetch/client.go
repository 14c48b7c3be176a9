// Package fetch implements the retrying HTTP client used to pull pages from
// the remote marketplace API.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// APIRequestError reports a request that did not produce a usable response
// after all retry attempts. Status is zero when the failure was a transport
// error rather than an HTTP status.
type APIRequestError struct {
	Status   int
	Attempts int
	URL      string
	Err      error
}

func (e *APIRequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api request to %s failed with status %d after %d attempt(s)", e.URL, e.Status, e.Attempts)
	}
	return fmt.Sprintf("api request to %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *APIRequestError) Unwrap() error { return e.Err }

// Options configure retry behavior for a Client.
type Options struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BackoffFactor scales the exponential delay in seconds:
	// delay = BackoffFactor * 2^attempt.
	BackoffFactor float64

	// RetryStatuses are HTTP status codes worth retrying.
	RetryStatuses []int

	// AllowedMethods are the methods retries are permitted for.
	// Requests with other methods fail on the first error.
	AllowedMethods []string
}

// Client is an HTTP client with bounded retries and exponential backoff.
type Client struct {
	http          *http.Client
	apiKey        string
	maxRetries    int
	backoffFactor float64
	retryStatus   map[int]bool
	retryMethod   map[string]bool
	logger        *slog.Logger

	// sleep is replaceable in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(opts Options, apiKey string, logger *slog.Logger) *Client {
	retryStatus := make(map[int]bool, len(opts.RetryStatuses))
	for _, s := range opts.RetryStatuses {
		retryStatus[s] = true
	}
	retryMethod := make(map[string]bool, len(opts.AllowedMethods))
	for _, m := range opts.AllowedMethods {
		retryMethod[m] = true
	}

	return &Client{
		http:          &http.Client{Timeout: opts.Timeout},
		apiKey:        apiKey,
		maxRetries:    opts.MaxRetries,
		backoffFactor: opts.BackoffFactor,
		retryStatus:   retryStatus,
		retryMethod:   retryMethod,
		logger:        logger,
		sleep:         sleepCtx,
	}
}

// Do performs one logical API request, retrying transport errors and
// retryable status codes when the method permits it. On success it returns
// the response body; on failure a *APIRequestError describing the last
// attempt.
func (c *Client) Do(ctx context.Context, method, rawURL string, query url.Values, body []byte) ([]byte, error) {
	reqURL := rawURL
	if len(query) > 0 {
		reqURL = rawURL + "?" + query.Encode()
	}

	requestID := uuid.NewString()
	attempts := 0
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++

		data, status, err := c.attempt(ctx, method, reqURL, body)
		if err == nil && status >= 200 && status < 300 {
			c.logger.Debug("api request succeeded",
				"request_id", requestID, "url", reqURL, "attempts", attempts)
			return data, nil
		}

		lastStatus = status
		lastErr = err

		retryable := c.retryMethod[method] && (err != nil || c.retryStatus[status])
		if !retryable || attempt == c.maxRetries {
			break
		}

		delay := time.Duration(c.backoffFactor * math.Pow(2, float64(attempt)) * float64(time.Second))
		c.logger.Debug("retrying api request",
			"request_id", requestID, "url", reqURL,
			"status", status, "attempt", attempts, "delay", delay, "error", err)
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return nil, &APIRequestError{Status: lastStatus, Attempts: attempts, URL: reqURL, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, method, reqURL string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return data, resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
