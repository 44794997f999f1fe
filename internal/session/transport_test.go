package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/tokenstore"
)

// Allow to use a function as refresher
type refreshFunc func(ctx context.Context, stale string) (string, error)

func (f refreshFunc) Refresh(ctx context.Context, stale string) (string, error) {
	return f(ctx, stale)
}

type seenRequest struct {
	Authorization string
	RequestID     string
	Body          string
}

// Server that accepts only 'Bearer <valid>' and records every request
type authServer struct {
	*httptest.Server

	mu    sync.Mutex
	valid string
	seen  []seenRequest
}

func newAuthServer(t *testing.T, valid string) *authServer {
	s := &authServer{valid: valid}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.seen = append(s.seen, seenRequest{
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get(HeaderRequestID),
			Body:          string(body),
		})
		valid := s.valid
		s.mu.Unlock()

		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
			return
		}
		_, _ = w.Write([]byte("ok:" + string(body)))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *authServer) requests() []seenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]seenRequest(nil), s.seen...)
}

func newStore(t *testing.T, pair models.TokenPair) *tokenstore.Memory {
	store := tokenstore.NewMemory()
	require.NoError(t, store.Set(t.Context(), pair))
	return store
}

func readBody(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close() // nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestTransport_RoundTrip(t *testing.T) {
	noRefresh := refreshFunc(func(ctx context.Context, stale string) (string, error) {
		t.Fatal("refresh must not be called")
		return "", nil
	})

	t.Run("attach stored access token", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		store := newStore(t, models.TokenPair{Access: "tok", Refresh: "ref"})
		client := &http.Client{Transport: NewTransport(nil, store, noRefresh, nil)}

		resp, err := client.Get(srv.URL + "/trips")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok:", readBody(t, resp))
		require.Len(t, srv.requests(), 1)
		assert.Equal(t, "Bearer tok", srv.requests()[0].Authorization)
		assert.NotEmpty(t, srv.requests()[0].RequestID, "request id should be stamped")
	})

	t.Run("no token no header", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		client := &http.Client{Transport: NewTransport(nil, tokenstore.NewMemory(), refreshFunc(
			func(ctx context.Context, stale string) (string, error) {
				return "", apperrors.ErrNoRefreshToken
			}), nil)}

		_, err := client.Get(srv.URL + "/trips")

		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
		require.Len(t, srv.requests(), 1)
		assert.Empty(t, srv.requests()[0].Authorization)
	})

	t.Run("refresh and retry once with new token", func(t *testing.T) {
		srv := newAuthServer(t, "newtok")
		store := newStore(t, models.TokenPair{Access: "old", Refresh: "ref"})
		refresher := NewRefresher(RefresherConfig{}, store, func(ctx context.Context, refresh string) (string, error) {
			assert.Equal(t, "ref", refresh)
			return "newtok", nil
		}, nil)
		client := &http.Client{Transport: NewTransport(nil, store, refresher, nil)}

		resp, err := client.Post(srv.URL+"/trips", "application/json", strings.NewReader(`{"title":"x"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `ok:{"title":"x"}`, readBody(t, resp), "replayed body should reach server")

		seen := srv.requests()
		require.Len(t, seen, 2)
		assert.Equal(t, "Bearer old", seen[0].Authorization)
		assert.Equal(t, "Bearer newtok", seen[1].Authorization)
		assert.Equal(t, seen[0].RequestID, seen[1].RequestID, "retry should keep request id")

		pair, err := store.Get(t.Context())
		require.NoError(t, err)
		assert.Equal(t, models.TokenPair{Access: "newtok", Refresh: "ref"}, pair)
	})

	t.Run("second 401 is not retried", func(t *testing.T) {
		srv := newAuthServer(t, "never")
		store := newStore(t, models.TokenPair{Access: "old", Refresh: "ref"})
		calls := 0
		client := &http.Client{Transport: NewTransport(nil, store, refreshFunc(
			func(ctx context.Context, stale string) (string, error) {
				calls++
				return "also-wrong", nil
			}), nil)}

		resp, err := client.Get(srv.URL + "/trips")
		require.NoError(t, err)
		_ = readBody(t, resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 1, calls, "refresh should be called once")
		assert.Len(t, srv.requests(), 2, "only one retry expected")
	})

	t.Run("non 401 failure not retried", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		store := newStore(t, models.TokenPair{Access: "tok", Refresh: "ref"})
		client := &http.Client{Transport: NewTransport(nil, store, noRefresh, nil)}

		resp, err := client.Get(srv.URL + "/boom")
		require.NoError(t, err)
		_ = readBody(t, resp)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Len(t, srv.requests(), 1)
	})

	t.Run("without refresh returns 401 as is", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		store := newStore(t, models.TokenPair{Access: "old", Refresh: "ref"})
		client := &http.Client{Transport: NewTransport(nil, store, noRefresh, nil)}

		req, err := http.NewRequestWithContext(WithoutRefresh(t.Context()), http.MethodGet, srv.URL+"/login", nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)

		assert.Contains(t, readBody(t, resp), "Given token not valid")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("body that can not be replayed", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		store := newStore(t, models.TokenPair{Access: "old", Refresh: "ref"})
		client := &http.Client{Transport: NewTransport(nil, store, noRefresh, nil)}

		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+"/upload", io.NopCloser(strings.NewReader("data")))
		require.NoError(t, err)
		require.Nil(t, req.GetBody)

		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = readBody(t, resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Len(t, srv.requests(), 1)
	})

	t.Run("refresh failure returned to caller", func(t *testing.T) {
		srv := newAuthServer(t, "tok")
		store := newStore(t, models.TokenPair{Access: "old", Refresh: "ref"})
		refreshErr := errors.New("refresh rejected")
		refresher := NewRefresher(RefresherConfig{}, store, func(ctx context.Context, refresh string) (string, error) {
			return "", refreshErr
		}, nil)
		client := &http.Client{Transport: NewTransport(nil, store, refresher, nil)}

		_, err := client.Get(srv.URL + "/trips")

		require.ErrorIs(t, err, apperrors.ErrSessionTerminated)
		require.ErrorIs(t, err, refreshErr)
		assert.Len(t, srv.requests(), 1, "request should not be replayed")

		pair, err := store.Get(t.Context())
		require.NoError(t, err)
		assert.True(t, pair.IsZero(), "tokens should be cleared")
	})
}
