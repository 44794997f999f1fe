package fakeapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/triply/internal/models"
)

var errUnknownUser = errors.New("unknown user")

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Password  string `json:"password" validate:"required,min=8"`
		Password2 string `json:"password2" validate:"required"`
	}

	data, ok := bind[RegisterRequest](w, r)
	if !ok {
		return
	}
	if data.Password != data.Password2 {
		renderFields(w, map[string][]string{"password": {"Password fields didn't match."}})
		return
	}

	s.mu.Lock()
	_, exists := s.users[data.Email]
	s.mu.Unlock()
	if exists {
		renderFields(w, map[string][]string{"email": {"user with this email already exists."}})
		return
	}

	u := s.AddUser(data.Email, data.Password)

	s.mu.Lock()
	stored := s.users[data.Email]
	stored.FirstName, stored.LastName = data.FirstName, data.LastName
	if data.Username != "" {
		stored.Username = data.Username
	}
	u = stored.User
	pair, err := s.issueLocked(data.Email)
	s.mu.Unlock()
	if err != nil {
		renderDetail(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	jsonWithStatus(w, models.AuthResponse{
		User:    &u,
		Tokens:  &pair,
		Message: "User registered successfully",
	}, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, ok := bind[LoginRequest](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	u, exists := s.users[data.Email]
	s.mu.Unlock()
	if !exists || s.hasher.Compare(u.hashedPassword, data.Password) != nil {
		renderDetail(w, "No active account found with the given credentials", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	pair, err := s.issueLocked(data.Email)
	flat := s.flatTokens
	s.mu.Unlock()
	if err != nil {
		renderDetail(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := models.AuthResponse{User: &u.User, Message: "Login successful"}
	if flat {
		resp.Access, resp.Refresh = pair.Access, pair.Refresh
	} else {
		resp.Tokens = &pair
	}
	renderJSON(w, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	data, ok := bind[RefreshRequest](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delay, fail := s.refreshDelay, s.failRefresh
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail {
		renderDetail(w, "Token is invalid or expired", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.refresh[data.Refresh]
	if !ok {
		renderDetail(w, "Token is invalid or expired", http.StatusUnauthorized)
		return
	}
	u := s.users[email]
	access, err := s.tokens.access(u.ID.String(), s.epoch)
	if err != nil {
		renderDetail(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	renderJSON(w, models.RefreshResponse{Access: access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	data, ok := bind[LogoutRequest](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.refresh, data.Refresh)
	s.mu.Unlock()

	renderJSON(w, map[string]string{"message": "Logout successful"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	renderJSON(w, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	data, ok := bind[models.ProfileUpdate](w, r)
	if !ok {
		return
	}
	current, _ := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[current.Email]
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Username, data.Username)
	set(&u.FirstName, data.FirstName)
	set(&u.LastName, data.LastName)
	set(&u.Phone, data.Phone)
	set(&u.Bio, data.Bio)

	renderJSON(w, u.User)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	type ChangePasswordRequest struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	data, ok := bind[ChangePasswordRequest](w, r)
	if !ok {
		return
	}
	current, _ := userFromContext(r.Context())

	s.mu.Lock()
	u := s.users[current.Email]
	s.mu.Unlock()

	if s.hasher.Compare(u.hashedPassword, data.OldPassword) != nil {
		renderFields(w, map[string][]string{"old_password": {"Old password is not correct"}})
		return
	}
	hashed, err := s.hasher.Hash(data.NewPassword)
	if err != nil {
		renderDetail(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	u.hashedPassword = hashed
	s.mu.Unlock()

	renderJSON(w, map[string]string{"message": "Password changed successfully"})
}
