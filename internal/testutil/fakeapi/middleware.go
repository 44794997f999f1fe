package fakeapi

import (
	"net/http"
	"strings"
)

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.URL.Path]
		s.mu.Unlock()

		if ok {
			renderDetail(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		access, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || access == "" {
			renderDetail(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		epoch := s.epoch
		s.mu.Unlock()

		userID, err := s.tokens.parse(access, epoch)
		if err != nil {
			renderDetail(w, "Given token not valid for any token type", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		u, ok := s.userByID(userID)
		s.mu.Unlock()
		if !ok {
			renderDetail(w, "User not found", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(newContextWithUser(r.Context(), u.User)))
	})
}
