package ghapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/whodid/pkg/logger"
)

const (
	apiVersion    = "2022-11-28"
	acceptDefault = "application/vnd.github+json"
	acceptRawJSON = "application/vnd.github.raw+json"

	maxRetries        = 2
	networkRetryDelay = 5 * time.Second
	requestTimeout    = 60 * time.Second
)

// Client issues authenticated GET requests against the GitHub REST API with
// rate-limit backoff and bounded retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	// RateLimitSlack is added on top of the reset timestamp before retrying
	RateLimitSlack time.Duration
	// PageDelay paces successive pagination requests
	PageDelay time.Duration
	// DetailDelay paces successive per-item detail requests
	DetailDelay time.Duration
}

// NewClient creates a GitHub API client. An empty token means unauthenticated
// requests with much lower rate limits.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		RateLimitSlack: 5 * time.Second,
		PageDelay:      300 * time.Millisecond,
		DetailDelay:    500 * time.Millisecond,
	}
}

// StatusError is a terminal, non-retryable API outcome
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api returned status %d for %s", e.StatusCode, e.URL)
}

// get performs a GET request with the configured headers. Rate-limit
// exhaustion and network errors are retried within the shared retry budget;
// everything else is terminal for this call. The caller owns the response
// body on success.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values, accept string) (*http.Response, error) {
	requestURL := rawURL
	if len(params) > 0 {
		separator := "?"
		if strings.Contains(rawURL, "?") {
			separator = "&"
		}
		requestURL = rawURL + separator + params.Encode()
	}

	if accept == "" {
		accept = acceptDefault
	}

	retries := maxRetries
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building request for %s: %w", requestURL, err)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", apiVersion)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if retries > 0 && ctx.Err() == nil {
				logger.WithError(err).Warnf("Network error fetching %s, retrying", requestURL)
				retries--
				c.sleep(ctx, networkRetryDelay)
				continue
			}
			return nil, fmt.Errorf("request to %s failed: %w", requestURL, err)
		}

		if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			resp.Body.Close()
			if retries <= 0 {
				return nil, fmt.Errorf("rate limit hit and no retries left for %s", requestURL)
			}
			wait := c.rateLimitWait(resp)
			logger.Warnf("Rate limit hit requesting %s, waiting %s", requestURL, wait)
			retries--
			c.sleep(ctx, wait)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		resp.Body.Close()
		c.logStatus(resp.StatusCode, requestURL)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: requestURL}
	}
}

// rateLimitWait computes how long to sleep before the quota resets
func (c *Client) rateLimitWait(resp *http.Response) time.Duration {
	reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Minute
	}
	wait := time.Until(time.Unix(reset, 0))
	if wait < 0 {
		wait = 0
	}
	return wait + c.RateLimitSlack
}

func (c *Client) logStatus(status int, requestURL string) {
	switch status {
	case http.StatusMovedPermanently:
		logger.Warnf("Resource moved permanently (301) for URL: %s", requestURL)
	case http.StatusNotFound:
		logger.Warnf("Resource not found (404) for URL: %s", requestURL)
	case http.StatusGone:
		logger.Warnf("Resource gone (410) for URL: %s, likely deleted", requestURL)
	case http.StatusConflict:
		logger.Warnf("Conflict (409) for URL: %s, repository might be empty", requestURL)
	case http.StatusForbidden:
		logger.Warnf("Forbidden (403) for URL: %s, check token permissions", requestURL)
	case http.StatusUnprocessableEntity:
		logger.Warnf("Unprocessable entity (422) for URL: %s", requestURL)
	default:
		if status >= 500 {
			logger.Warnf("Server error (%d) for URL: %s", status, requestURL)
		} else {
			logger.Warnf("HTTP error (%d) for URL: %s", status, requestURL)
		}
	}
}

// sleep waits for the given duration unless the context is cancelled first
func (c *Client) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
