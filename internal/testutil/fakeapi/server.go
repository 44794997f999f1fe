// Package fakeapi runs in-process Triply backend for tests.
// It issues real JWT access tokens, keeps users with bcrypt hashed passwords
// and has knobs to make tokens expire or refresh fail.
package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nkiryanov/triply/internal/models"
)

// Request seen by the server
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type user struct {
	models.User
	hashedPassword string
}

type Server struct {
	*httptest.Server

	tokens *tokenManager
	hasher bcryptHasher

	mu       sync.Mutex
	epoch    int64
	users    map[string]*user  // by email
	refresh  map[string]string // refresh token -> email
	trips    map[models.ID]models.Trip
	nextID   int
	requests []Request
	failures map[string]int

	failRefresh  bool
	refreshDelay time.Duration
	flatTokens   bool
}

type Option func(*Server)

func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokens = newTokenManager(s.tokens.key, ttl)
	}
}

// New starts fake backend, it is closed on test cleanup
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		tokens:   newTokenManager("fake-api-secret-key", 0),
		users:    make(map[string]*user),
		refresh:  make(map[string]string),
		trips:    make(map[models.ID]models.Trip),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)

	return s
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func (s *Server) router() http.Handler {
	withAuth := s.authMiddleware

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register/{$}", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login/{$}", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/token/refresh/{$}", s.handleRefresh)
	mux.HandleFunc("POST /api/v1/auth/logout/{$}", s.handleLogout)
	mux.Handle("GET /api/v1/auth/profile/{$}", withAuth(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PUT /api/v1/auth/profile/{$}", withAuth(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("POST /api/v1/auth/change-password/{$}", withAuth(http.HandlerFunc(s.handleChangePassword)))

	mux.Handle("GET /api/v1/trips/{$}", withAuth(http.HandlerFunc(s.handleListTrips)))
	mux.Handle("POST /api/v1/trips/{$}", withAuth(http.HandlerFunc(s.handleCreateTrip)))
	mux.Handle("GET /api/v1/trips/{id}/{$}", withAuth(http.HandlerFunc(s.handleGetTrip)))
	mux.Handle("PUT /api/v1/trips/{id}/{$}", withAuth(http.HandlerFunc(s.handleUpdateTrip)))
	mux.Handle("DELETE /api/v1/trips/{id}/{$}", withAuth(http.HandlerFunc(s.handleDeleteTrip)))

	mux.Handle("POST /api/v1/documents/{$}", withAuth(http.HandlerFunc(s.handleUpload)))

	return chain(mux,
		s.recordMiddleware,
		s.failureMiddleware,
	)
}

// AddUser registers user with the password
func (s *Server) AddUser(email string, password string) models.User {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u := &user{
		User: models.User{
			ID:        models.ID(strconv.Itoa(s.nextID)),
			Email:     email,
			Username:  strings.SplitN(email, "@", 2)[0],
			FirstName: "Test",
			LastName:  "User",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
		hashedPassword: hashed,
	}
	s.users[email] = u

	return u.User
}

// Issue tokens for user as login does
func (s *Server) Issue(email string) models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, err := s.issueLocked(email)
	if err != nil {
		panic(err)
	}
	return pair
}

// ExpireAccess makes every access token issued so far invalid
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

// RevokeRefresh makes every refresh token issued so far invalid
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

func (s *Server) SetFailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// Refresh endpoint sleeps that long before reply
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// Login replies with flat {"access","refresh"} instead of nested "tokens"
func (s *Server) SetFlatTokens(flat bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flatTokens = flat
}

// FailPath makes every request to the path fail with the status, 0 resets
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count requests with method and path
func (s *Server) Count(method string, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) issueLocked(email string) (models.TokenPair, error) {
	u, ok := s.users[email]
	if !ok {
		return models.TokenPair{}, errUnknownUser
	}

	access, err := s.tokens.access(u.ID.String(), s.epoch)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.tokens.refresh()
	if err != nil {
		return models.TokenPair{}, err
	}
	s.refresh[refresh] = email

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Server) userByID(id string) (*user, bool) {
	for _, u := range s.users {
		if u.ID.String() == id {
			return u, true
		}
	}
	return nil, false
}

type ctxKey string

const userKey ctxKey = "user"

func newContextWithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}
