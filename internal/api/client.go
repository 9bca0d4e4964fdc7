// Package api implements request building, transport and response
// interpretation for the Gemini REST API.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 64 * 1024

// HTTPDoer is the part of tls_client.HttpClient the client needs
type HTTPDoer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// GeminiClient sends composed requests to the Gemini API
type GeminiClient struct {
	httpClient HTTPDoer
	baseURL    string
	timeout    int
	logger     *slog.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithBaseURL overrides the API base URL (used by tests and proxies)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the transport
func WithHTTPClient(httpClient HTTPDoer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = httpClient
	}
}

// WithTimeoutSeconds sets the transport timeout. Ignored with WithHTTPClient.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *GeminiClient) {
		c.timeout = seconds
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *GeminiClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new GeminiClient
func NewClient(opts ...ClientOption) (*GeminiClient, error) {
	client := &GeminiClient{
		baseURL: models.EndpointBase,
		timeout: 300,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeout),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close releases idle connections. Further calls fail.
func (c *GeminiClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

// IsClosed returns whether the client is closed
func (c *GeminiClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BaseURL returns the API base URL in use
func (c *GeminiClient) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the full URL for req without the key parameter
func (c *GeminiClient) Endpoint(req *Request) string {
	return c.baseURL + req.Path()
}

// Do sends req and interprets the response. There is no retry: every
// failure is returned to the caller as-is.
func (c *GeminiClient) Do(ctx context.Context, apiKey string, req *Request) (*models.Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.ErrMissingCredential
	}
	if req == nil {
		return nil, apierrors.ErrInvalidRequest
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	endpoint := c.Endpoint(req)
	target := endpoint + "?key=" + url.QueryEscape(apiKey)

	httpReq, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range models.DefaultHeaders() {
		httpReq.Header.Set(key, value)
	}

	c.logger.Debug("sending request",
		"kind", req.Kind.String(),
		"model", req.Model,
		"bytes", len(req.Body),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierrors.NewNetworkError(req.Kind.String(), endpoint, stripURL(err))
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	var body []byte
	if resp.StatusCode >= 400 {
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	} else {
		body, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", endpoint, err)
	}

	c.logger.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 400 {
		if perr := checkBody(req.Kind, body); perr != nil {
			c.logger.Debug("response did not match the expected shape", "error", perr)
		}
	}

	result, err := Interpret(req.Kind, resp.StatusCode, body)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			apiErr.Endpoint = endpoint
		}
		return nil, err
	}

	result.Warnings = append(result.Warnings, req.Warnings...)
	return result, nil
}

// stripURL drops the *url.Error wrapper, whose text carries the key
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
