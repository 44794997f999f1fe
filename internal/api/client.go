package api

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

	"github.com/nkiryanov/triply/internal/logger"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "triply-cli"

	contentTypeJSON = "application/json"

	// Replies bigger than that are not expected from backend
	maxResponseSize = 10 << 20
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client of Triply backend REST API
type Client struct {
	baseURL   string
	userAgent string

	http   *http.Client
	logger logger.Logger

	Auth          *AuthClient
	Trips         *TripsClient
	Itinerary     *ItineraryClient
	Budget        *BudgetClient
	Collaboration *CollaborationClient
	Documents     *DocumentsClient
}

// NewClient creates client that sends requests through the transport
// Pass session transport to get authenticated client or nil to get plain one
func NewClient(cfg Config, transport http.RoundTripper, l logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: l.With("component", "api"),
	}

	c.Auth = &AuthClient{c: c}
	c.Trips = &TripsClient{c: c}
	c.Itinerary = &ItineraryClient{c: c}
	c.Budget = &BudgetClient{c: c}
	c.Collaboration = &CollaborationClient{c: c}
	c.Documents = &DocumentsClient{c: c}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON sends 'in' as json body (if not nil) and decodes reply into 'out' (if not nil)
func (c *Client) doJSON(ctx context.Context, method string, path string, query url.Values, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error while encoding request. Err: %w", err)
		}
		// bytes.Reader lets the request be replayed after token refresh
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method string, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("error while creating request. Err: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		err = classify(err)
		c.logger.Debug("Request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return err
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		c.logger.Debug("Backend rejected request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"message", apiErr.Message(),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("error while reading response. Err: %w", classify(err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Failed to decode response", "path", req.URL.Path, "error", err)
		return fmt.Errorf("error while decoding response. Err: %w", err)
	}

	return nil
}

func idPath(prefix string, id fmt.Stringer, suffix ...string) string {
	p := prefix + url.PathEscape(id.String()) + "/"
	for _, s := range suffix {
		p += s + "/"
	}
	return p
}
