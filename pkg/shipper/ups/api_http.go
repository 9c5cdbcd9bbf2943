package ups

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Commit posts body to url.
func (c *HTTPAPIClient) Commit(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, transportError("REQUEST", "failed to create request", 0, false, err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		retryable := !errors.Is(err, context.Canceled)
		return nil, transportError("TRANSPORT", "request failed", 0, retryable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("TRANSPORT", "failed to read response", resp.StatusCode, true, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseError(resp.StatusCode)
	}
	return respBody, nil
}

func (c *HTTPAPIClient) parseError(statusCode int) error {
	var cause error
	switch {
	case statusCode == http.StatusTooManyRequests:
		cause = shipper.ErrRateLimitExceeded
	case statusCode >= 500:
		cause = shipper.ErrServiceUnavailable
	}
	return transportError(
		fmt.Sprintf("HTTP_%d", statusCode),
		http.StatusText(statusCode),
		statusCode,
		cause != nil,
		cause,
	)
}
