package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "logpuzzle/pkg/errors"
	"logpuzzle/pkg/logger"
)

// Client downloads images over plain HTTP(S) GET
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a client whose requests give up after timeout
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "image/*,*/*;q=0.8",
		},
		logger: log,
	}
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// HTTPClient exposes the underlying transport client
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Download streams the body of url into w and returns the number of bytes
// written. Any non-2xx status is an error.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return 0, errs.FromStatusCode(url, resp.StatusCode)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return written, errs.Wrap(errs.ErrorTypeCancelled, url, "download cancelled", ctx.Err())
		}
		return written, errs.Wrap(errs.ErrorTypeNetwork, url, "failed to read response body", err)
	}

	return written, nil
}

// get performs a GET request with the configured headers
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, url, "failed to create request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.Wrap(errs.ErrorTypeCancelled, url, "request cancelled", ctx.Err())
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, url, fmt.Sprintf("request failed after %s", duration.Round(time.Millisecond)), err)
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, duration)
	return resp, nil
}
