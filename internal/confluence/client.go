package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/auth"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/config"
)

// Client is a helper around the Confluence Data Center REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// RawBody allows callers to provide a pre-encoded body when constructing
// requests. The legacy permissions endpoint takes form-encoded data rather
// than JSON.
type RawBody struct {
	Reader      io.Reader
	ContentType string
}

// NewClient constructs a Client for the specified base URL and credentials.
func NewClient(base string, creds config.ConfluenceConfig, logger *slog.Logger) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("confluence: base URL required")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("confluence: parse base url: %w", err)
	}

	transport := auth.NewTransport(nil, creds)
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewRequest builds an HTTP request with optional query parameters and body.
// A nil body produces a bodiless request; a RawBody is sent as-is; anything
// else is JSON encoded.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var bodyReader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
		// no body
	case RawBody:
		bodyReader = b.Reader
		contentType = b.ContentType
	default:
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("confluence: encode body: %w", err)
		}
		bodyReader = buf
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// Do executes the request and decodes the response JSON into out if provided.
// Non-2xx responses are returned as *Error.
func (c *Client) Do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return parseError(res)
	}

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("confluence: decode response: %w", err)
	}

	return nil
}

// DoText executes the request and returns the response body as text.
// The legacy permissions endpoint answers with a bare boolean instead of JSON.
func (c *Client) DoText(req *http.Request) (string, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", parseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("confluence: read response: %w", err)
	}

	return string(data), nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.baseURL.String(), "/")
}

// SetTransport overrides the underlying HTTP transport. Useful for testing.
func (c *Client) SetTransport(rt http.RoundTripper) {
	if rt == nil {
		return
	}
	c.httpClient.Transport = rt
}
