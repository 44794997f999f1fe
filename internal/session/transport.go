package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/triply/internal/logger"
	"github.com/nkiryanov/triply/internal/tokenstore"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"

	// Request is retried at most once after refresh
	maxRetries = 1
)

type ctxKey string

const noRefreshKey ctxKey = "no-refresh"

// WithoutRefresh marks requests which 401 reply must reach the caller as is
// Used by login, register and refresh endpoints: their 401 means wrong credentials, not expired session
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRefreshKey, true)
}

func refreshDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noRefreshKey).(bool)
	return v
}

type refresher interface {
	Refresh(ctx context.Context, stale string) (string, error)
}

// Transport attaches access token to every request and recovers from authorization failure
// by refreshing the token and replaying the request once
type Transport struct {
	base      http.RoundTripper
	store     tokenstore.Store
	refresher refresher
	logger    logger.Logger
}

func NewTransport(base http.RoundTripper, store tokenstore.Store, r refresher, l logger.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Transport{
		base:      base,
		store:     store,
		refresher: r,
		logger:    l.With("component", "transport"),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	pair, err := t.store.Get(ctx)
	if err != nil {
		closeBody(req)
		return nil, fmt.Errorf("error while reading tokens. Err: %w", err)
	}

	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	resp, err := t.send(req, requestID, pair.Access, 0)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || refreshDisabled(ctx) {
		return resp, err
	}

	// Body is consumed already and can't be sent again
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		t.logger.Warn("Request can not be replayed after refresh", "method", req.Method, "path", req.URL.Path)
		return resp, nil
	}

	drain(resp)

	access, err := t.refresher.Refresh(ctx, pair.Access)
	if err != nil {
		return nil, err
	}

	// Second reply is returned whatever it is: no more attempts
	return t.send(req, requestID, access, maxRetries)
}

// send performs one attempt on a copy of the request, the original one stays untouched
func (t *Transport) send(req *http.Request, requestID string, access string, attempt int) (*http.Response, error) {
	r := req.Clone(req.Context())
	if attempt > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("error while rewinding request body. Err: %w", err)
		}
		r.Body = body
	}

	r.Header.Set(HeaderRequestID, requestID)
	if access != "" {
		r.Header.Set(HeaderAuthorization, "Bearer "+access)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	if err != nil {
		t.logger.Debug("API request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"attempt", attempt,
			"request_id", requestID,
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("API request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"attempt", attempt,
		"authenticated", access != "",
		"duration", time.Since(start),
		"request_id", requestID,
	)
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
